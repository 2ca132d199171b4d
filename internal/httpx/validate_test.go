package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteID(t *testing.T) {
	assert.NoError(t, SiteID("abcdefghij"))

	err := SiteID("short")
	ae, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, ae.Kind)
	assert.Equal(t, "siteId", ae.Fields[0].Name)
	assert.Equal(t, "Must be exactly 10 characters.", ae.Fields[0].Message)
}

func TestStructUsesFormNames(t *testing.T) {
	type payload struct {
		Name string `form:"name" validate:"min=3"`
	}
	ae, ok := As(Struct(payload{Name: "ab"}))
	require.True(t, ok)
	assert.Equal(t, "name", ae.Fields[0].Name)
}

func TestCheckbox(t *testing.T) {
	cases := map[string]bool{
		"on": true, "true": true, "1": true, "yes": true, "TRUE": true,
		"false": false, "off": false, "0": false, "": false, "checked": false,
	}
	for value, want := range cases {
		body := url.Values{"flag": {value}}.Encode()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, want, Checkbox(req, "flag"), "value %q", value)
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.False(t, Checkbox(req, "missing"))
}
