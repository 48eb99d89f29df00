package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"codeberg.org/mutker/mmcqueues/internal/errors"
	"codeberg.org/mutker/mmcqueues/internal/search"
	"gopkg.in/yaml.v3"
)

type renderer struct {
	cfg Config
}

func NewRenderer(cfg Config) (Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &renderer{cfg: cfg}, nil
}

// Render writes result in the configured format.
func (r *renderer) Render(w io.Writer, result *search.Result) error {
	errFactory := errors.New()

	if result == nil {
		return errFactory.WithMessage(ErrRender, "nothing to render")
	}

	doc := Build(result, r.cfg.Detailed)

	var err error
	switch r.cfg.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
	default:
		err = writeText(w, doc)
	}

	if err != nil {
		return errFactory.Wrap(ErrRender, err)
	}
	return nil
}

// Build converts a search result into a Document.
func Build(result *search.Result, detailed bool) Document {
	outcomes := result.Outcomes()

	doc := Document{
		MaxWait:    result.MaxWait.String(),
		MaxServers: result.MaxServers,
		Entries:    make([]Entry, 0, len(outcomes)),
	}

	for _, o := range outcomes {
		entry := Entry{
			ArrivalRate: o.Pair.ArrivalRate,
			ServiceRate: o.Pair.ServiceRate,
			Resolved:    o.Resolved(),
		}

		if o.Resolved() {
			doc.Resolved++
			entry.Servers = o.Servers()
			entry.WaitTime = o.WaitTime().String()
			if detailed {
				m := o.Metrics
				entry.Details = &Details{
					Utilization:     m.Utilization().String(),
					IdleProbability: m.IdleProbability().String(),
					QueueLength:     m.QueueLength().String(),
					SystemLength:    m.SystemLength().String(),
					ResponseTime:    m.ResponseTime().String(),
				}
			}
		} else {
			doc.Unresolved++
		}

		doc.Entries = append(doc.Entries, entry)
	}

	return doc
}

func writeText(w io.Writer, doc Document) error {
	detailed := false
	for _, e := range doc.Entries {
		if e.Details != nil {
			detailed = true
			break
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"PAIR", "C", "WQ"}
	if detailed {
		header = append(header, "RHO", "P0", "LQ", "L", "W")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, e := range doc.Entries {
		pair := search.Pair{ArrivalRate: e.ArrivalRate, ServiceRate: e.ServiceRate}.String()
		if !e.Resolved {
			fmt.Fprintf(tw, "%s\tunresolved\t-\n", pair)
			continue
		}

		row := []string{pair, fmt.Sprint(e.Servers), e.WaitTime}
		if e.Details != nil {
			row = append(row,
				e.Details.Utilization,
				e.Details.IdleProbability,
				e.Details.QueueLength,
				e.Details.SystemLength,
				e.Details.ResponseTime,
			)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nresolved=%d unresolved=%d max_wait=%s max_servers=%d\n",
		doc.Resolved, doc.Unresolved, doc.MaxWait, doc.MaxServers)
	return err
}
