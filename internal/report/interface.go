package report

import (
	"io"

	"codeberg.org/mutker/mmcqueues/internal/search"
)

// Renderer writes a search result as a single document.
type Renderer interface {
	Render(w io.Writer, result *search.Result) error
}

// Document is the format independent view of a search result.
type Document struct {
	MaxWait    string  `json:"max_wait" yaml:"max_wait"`
	MaxServers int     `json:"max_servers" yaml:"max_servers"`
	Resolved   int     `json:"resolved" yaml:"resolved"`
	Unresolved int     `json:"unresolved" yaml:"unresolved"`
	Entries    []Entry `json:"entries" yaml:"entries"`
}

// Entry is one grid pair. Servers and WaitTime are empty when the pair is
// unresolved.
type Entry struct {
	ArrivalRate float64  `json:"arrival_rate" yaml:"arrival_rate"`
	ServiceRate float64  `json:"service_rate" yaml:"service_rate"`
	Resolved    bool     `json:"resolved" yaml:"resolved"`
	Servers     int      `json:"servers,omitempty" yaml:"servers,omitempty"`
	WaitTime    string   `json:"wait_time,omitempty" yaml:"wait_time,omitempty"`
	Details     *Details `json:"details,omitempty" yaml:"details,omitempty"`
}

// Details carries the full metric set of the chosen configuration.
type Details struct {
	Utilization     string `json:"utilization" yaml:"utilization"`
	IdleProbability string `json:"idle_probability" yaml:"idle_probability"`
	QueueLength     string `json:"queue_length" yaml:"queue_length"`
	SystemLength    string `json:"system_length" yaml:"system_length"`
	ResponseTime    string `json:"response_time" yaml:"response_time"`
}
