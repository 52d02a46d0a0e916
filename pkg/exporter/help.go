package exporter

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig"
)

const helpTemplate = `{{ .Program }} {{ .Version }}

Exports the pending MongoDB Atlas invoice of organization {{ .OrgID | quote }} as Prometheus metrics.

Endpoints:
{{- range .Endpoints }}
  {{ printf "%-9s" .Path }} {{ .Description }}
{{- end }}

Metrics:
  atlas_billing_item_cents_total{cluster_name,group_name,sku}
      billed cents on the pending invoice
  atlas_billing_item_cents_rate{cluster_name,group_name,sku}
      hourly rate over line items that ended in the last 30 hours

Configuration (flag / environment variable):
{{- range .Flags }}
  --{{ printf "%-18s" .Name }} {{ $.EnvPrefix }}_{{ .Name | upper | replace "-" "_" }}
{{- end }}
`

type helpEndpoint struct {
	Path        string
	Description string
}

type HelpContext struct {
	Program   string
	Version   string
	OrgID     string
	EnvPrefix string
	Endpoints []helpEndpoint
	Flags     []HelpFlag
}

type HelpFlag struct {
	Name string
}

var helpEndpoints = []helpEndpoint{
	{Path: "/", Description: "fetch, aggregate and report as JSON (requires the Atlas key pair as basic auth)"},
	{Path: "/health", Description: "liveness check"},
	{Path: "/help", Description: "this text"},
	{Path: "/metrics", Description: "Prometheus metrics"},
}

// RenderHelp renders the text served on /help.
func RenderHelp(ctx HelpContext) (string, error) {
	tmpl, err := template.New("help").Funcs(sprig.TxtFuncMap()).Parse(helpTemplate)
	if err != nil {
		return "", fmt.Errorf("error parsing help template: %w", err)
	}
	if ctx.Endpoints == nil {
		ctx.Endpoints = helpEndpoints
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("error rendering help template: %w", err)
	}
	return buf.String(), nil
}
