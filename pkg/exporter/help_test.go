package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHelp(t *testing.T) {
	text, err := RenderHelp(HelpContext{
		Program:   "atlas-billing-exporter",
		Version:   "0.1.0",
		OrgID:     "org-1",
		EnvPrefix: "ATLAS_BILLING_EXPORTER",
		Flags:     []HelpFlag{{Name: "port"}, {Name: "public-key"}},
	})
	require.NoError(t, err)

	assert.Contains(t, text, "atlas-billing-exporter 0.1.0")
	assert.Contains(t, text, `organization "org-1"`)
	assert.Contains(t, text, "/metrics")
	assert.Contains(t, text, "ATLAS_BILLING_EXPORTER_PORT")
	assert.Contains(t, text, "ATLAS_BILLING_EXPORTER_PUBLIC_KEY")
}
