package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docschema/docschema/internal/schema"
	tplhandler "github.com/docschema/docschema/internal/template/handler"
	tplsvc "github.com/docschema/docschema/internal/template/service"
	"github.com/docschema/docschema/pkg/middleware"
)

const invoiceYAML = `name: Invoice
objectFields:
  - name: amount
    type: number
    required: true
    validation: number
lineItemFields:
  - name: qty
    type: number
    defaultValue: 1
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestCompileCommand(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "invoice.yaml", invoiceYAML)

	var out bytes.Buffer
	require.NoError(t, runCompile(&out, tpl, false))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, schema.Draft07, got["$schema"])
	assert.Equal(t, "Invoice", got["title"])
	object := got["properties"].(map[string]interface{})["objectFields"].(map[string]interface{})
	assert.Equal(t, []interface{}{"amount"}, object["required"])

	out.Reset()
	require.NoError(t, runCompile(&out, tpl, true))
	assert.Contains(t, out.String(), `"minLength": 1`)
}

func TestCompileCommandThroughCobra(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "invoice.yaml", invoiceYAML)
	target := filepath.Join(dir, "invoice.schema.json")

	cmd := rootCmd()
	cmd.SetArgs([]string{"compile", tpl, "-o", target, "--log-level", "error"})
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lineItemFields"`)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "invoice.yaml", invoiceYAML)
	good := writeFile(t, dir, "good.json", `{"name":"INV-1","objectVariables":{"amount":"12.5"},"lineItemVariables":[{}]}`)
	bad := writeFile(t, dir, "bad.json", `{"name":"INV-2","objectVariables":{},"lineItemVariables":[{}]}`)

	var out bytes.Buffer
	require.NoError(t, runValidate(&out, tpl, good, schema.ModeStrict))
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "Invoice", doc["templateId"], "template name stands in for a missing id")
	assert.Equal(t, 12.5, doc["objectVariables"].(map[string]interface{})["amount"])
	assert.Equal(t, 1.0, doc["lineItemVariables"].([]interface{})[0].(map[string]interface{})["qty"])

	out.Reset()
	require.NoError(t, runValidate(&out, tpl, bad, schema.ModeLenient), "lenient mode ignores the template")

	out.Reset()
	err := runValidate(&out, tpl, bad, schema.ModeStrict)
	require.Error(t, err)
	assert.Contains(t, out.String(), "objectVariables.amount")
}

func newServer(t *testing.T) (*httptest.Server, tplsvc.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := tplsvc.NewMemoryService()
	g := gin.New()
	g.Use(middleware.TenantMiddleware(nil))
	tplhandler.RegisterTemplateRoutes(g, svc)
	srv := httptest.NewServer(g)
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestSyncCreatesThenUpdates(t *testing.T) {
	srv, svc := newServer(t)
	dir := t.TempDir()
	tpl := writeFile(t, dir, "invoice.yaml", invoiceYAML)

	s := &syncer{path: tpl, client: &client{base: srv.URL, customer: "acme", http: srv.Client()}}
	require.NoError(t, s.push(context.Background()))
	require.NotEmpty(t, s.id)

	writeFile(t, dir, "invoice.yaml", "name: Invoice v2\nobjectFields: []\n")
	require.NoError(t, s.push(context.Background()))

	got, err := svc.Get(context.Background(), "acme", s.id)
	require.NoError(t, err)
	assert.Equal(t, "Invoice v2", got.Name)
	assert.Empty(t, got.ObjectFields)
	assert.Empty(t, got.LineItemFields, "the file is the whole template")

	_, err = svc.Get(context.Background(), "other", s.id)
	assert.Error(t, err)
}

func TestSyncReportsServerErrors(t *testing.T) {
	srv, _ := newServer(t)
	dir := t.TempDir()
	tpl := writeFile(t, dir, "invoice.yaml", invoiceYAML)

	s := &syncer{path: tpl, client: &client{base: srv.URL, http: srv.Client()}}
	err := s.push(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSyncWatchPushesEdits(t *testing.T) {
	srv, svc := newServer(t)
	dir := t.TempDir()
	tpl := writeFile(t, dir, "invoice.yaml", invoiceYAML)

	s := &syncer{path: tpl, client: &client{base: srv.URL, customer: "acme", http: srv.Client()}}
	require.NoError(t, s.push(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watch(ctx, 20*time.Millisecond) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// give the watcher time to register before editing
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		writeFile(t, dir, "invoice.yaml", "name: Edited\n")
	}

	require.Eventually(t, func() bool {
		got, err := svc.Get(context.Background(), "acme", s.id)
		return err == nil && got.Name == "Edited"
	}, 3*time.Second, 20*time.Millisecond)
}
