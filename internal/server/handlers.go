package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/bookmark-organizer/internal/bookmarks"
	"github.com/jonathan/bookmark-organizer/internal/pipeline"
	"github.com/jonathan/bookmark-organizer/internal/rendering"
	"github.com/jonathan/bookmark-organizer/internal/types"
	"github.com/jonathan/bookmark-organizer/internal/visualize"
)

// OrganizeResponse is the body of a successful organize request.
// PlotData is null when no plot could be built.
type OrganizeResponse struct {
	Bookmarks []types.OrganizedBookmark `json:"bookmarks"`
	PlotData  *types.PlotData           `json:"plot_data"`
}

// handleOrganize parses an uploaded bookmark file, classifies it and returns the
// organized list with its plot.
func (s *Server) handleOrganize(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	records, err := s.readUpload(w, r, log)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	organized, err := s.organize(r.Context(), records, log, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, OrganizeResponse{
		Bookmarks: organized,
		PlotData:  s.plot(r.Context(), organized, log),
	})
}

// handleOrganizeStream is handleOrganize with per-batch progress sent as SSE.
// Input errors are reported before the stream starts.
func (s *Server) handleOrganizeStream(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	records, err := s.readUpload(w, r, log)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	organized, err := s.organize(r.Context(), records, log, func(e pipeline.BatchEvent) {
		err := sse.WriteProgress(ProgressEvent{
			Progress: e.Progress(),
			Chunk:    e.Index + 1,
			Total:    e.Total,
		})
		if err != nil {
			log.Warn("failed to write progress event", zap.Error(err))
		}
	})
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	result := OrganizeResponse{
		Bookmarks: organized,
		PlotData:  s.plot(r.Context(), organized, log),
	}
	if err := sse.WriteComplete(result); err != nil {
		log.Warn("failed to write completion event", zap.Error(err))
	}
}

// handleConvert turns a JSON array of organized bookmarks into a bookmark file download.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var list types.OrganizedBookmarks
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.errorResponse(w, HTTPStatus(maxErr), "request body too large")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, (&InputError{Message: "invalid request body", Cause: err}).Error())
		return
	}
	if err := list.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, (&InputError{Message: "invalid bookmarks", Cause: err}).Error())
		return
	}

	doc, err := rendering.RenderHTML(list, s.now())
	if err != nil {
		log.Error("failed to render bookmark file", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info("converted bookmarks", zap.Int("count", len(list)))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rendering.DownloadFilename}))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(doc)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		log.Warn("failed to write bookmark file", zap.Error(err))
	}
}

// readUpload extracts and parses the multipart "file" field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, log *zap.Logger) ([]types.Bookmark, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, maxErr
		}
		log.Error("no file part in the request", zap.Error(err))
		return nil, &InputError{Message: "No file part"}
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		// A file input with nothing selected arrives as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			log.Error("no selected file")
			return nil, &InputError{Message: "No selected file"}
		}
		log.Error("no file part in the request")
		return nil, &InputError{Message: "No file part"}
	}
	defer file.Close()

	if header.Filename == "" {
		log.Error("no selected file")
		return nil, &InputError{Message: "No selected file"}
	}

	log.Info("processing file", zap.String("filename", header.Filename), zap.Int64("size", header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	records, err := bookmarks.Parse(data)
	if err != nil {
		log.Error("failed to decode upload", zap.Error(err))
		return nil, err
	}

	log.Info("parsed bookmarks", zap.Int("count", len(records)))
	return records, nil
}

// organize runs the pipeline, pushing every completed batch to websocket clients.
func (s *Server) organize(ctx context.Context, records []types.Bookmark, log *zap.Logger, onBatch pipeline.BatchCallback) ([]types.OrganizedBookmark, error) {
	if s.cfg.ClassifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ClassifyTimeout)
		defer cancel()
	}

	organized, err := pipeline.Organize(ctx, records, s.classifier, pipeline.Options{
		ChunkSize:   s.cfg.ChunkSize,
		Concurrency: s.cfg.Concurrency,
		Logger:      log,
		Metrics:     s.metrics,
		OnBatch: func(e pipeline.BatchEvent) {
			s.hub.Broadcast("bookmark_update", BookmarkUpdate{Count: e.Count, Bookmarks: e.Bookmarks})
			if onBatch != nil {
				onBatch(e)
			}
		},
	})
	if err != nil {
		log.Error("failed to organize bookmarks", zap.Int("bookmarks", len(records)), zap.Error(err))
		return nil, err
	}

	log.Info("organized bookmarks", zap.Int("count", len(organized)))
	return organized, nil
}

// plot builds the visualization. Any failure means "no plot", never a failed request.
func (s *Server) plot(ctx context.Context, organized []types.OrganizedBookmark, log *zap.Logger) *types.PlotData {
	if s.plotter == nil {
		return nil
	}

	data, err := s.plotter.Plot(ctx, organized)
	switch {
	case errors.Is(err, visualize.ErrInsufficientSamples):
		log.Info("not enough bookmarks to visualize", zap.Int("count", len(organized)))
		return nil
	case err != nil:
		log.Error("visualization failed", zap.Error(err))
		return nil
	}
	return data
}
