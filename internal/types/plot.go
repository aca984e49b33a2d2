package types

// PlotData is a Plotly-shaped figure: one scatter trace per URL domain.
type PlotData struct {
	Data   []PlotTrace `json:"data"`
	Layout PlotLayout  `json:"layout"`
}

// PlotTrace is one scatter series.
type PlotTrace struct {
	X         []float64  `json:"x"`
	Y         []float64  `json:"y"`
	Mode      string     `json:"mode"`
	Name      string     `json:"name"`
	Marker    PlotMarker `json:"marker"`
	Text      []string   `json:"text"`
	HoverInfo string     `json:"hoverinfo"`
}

// PlotMarker describes the marker style of a trace.
type PlotMarker struct {
	Color string         `json:"color"`
	Size  int            `json:"size"`
	Line  PlotMarkerLine `json:"line"`
}

// PlotMarkerLine is the outline of a marker.
type PlotMarkerLine struct {
	Width int    `json:"width"`
	Color string `json:"color"`
}

// PlotLayout holds figure-level settings.
type PlotLayout struct {
	Title     string   `json:"title"`
	XAxis     PlotAxis `json:"xaxis"`
	YAxis     PlotAxis `json:"yaxis"`
	HoverMode string   `json:"hovermode"`
}

// PlotAxis is an axis title.
type PlotAxis struct {
	Title string `json:"title"`
}
