package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table writes rows as a light box table in text mode and as a markdown
// table otherwise.
func (r *Renderer) Table(header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.AppendHeader(header)
	t.AppendRows(rows)

	if r.EffectiveMode() == ModeText {
		t.SetStyle(table.StyleLight)
		t.Render()
		return
	}
	t.RenderMarkdown()
	r.Println("")
}

// KeyValue writes one labelled value.
func (r *Renderer) KeyValue(key, value string) {
	if r.EffectiveMode() == ModeText {
		r.Printf("%s %s\n", r.Muted(key+":"), value)
		return
	}
	r.Println(FormatKeyValue(key, value))
}
