//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "storefront-api"
	ConsumerName = "storefront-web"

	StateCatalogBaseline = "catalog baseline"
	StateProductExists   = "product pact-tee exists"
	StateProductMissing  = "no product pact-ghost"
	StatePaymentsEnabled = "online payments are configured"
)

const (
	ExistingProductID = "pact-tee"
	MissingProductID  = "pact-ghost"

	MerchantID     = "1211149"
	MerchantSecret = "pact-secret"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProductPayload is the product the provider seeds for pact-tee.
func ExampleProductPayload() map[string]any {
	return map[string]any{
		"id":             ExistingProductID,
		"name":           "Pact Linen Tee",
		"description":    "Breathable linen tee",
		"price":          "45.00",
		"effectivePrice": "45.00",
		"image":          "https://example.pact/products/tee.png",
		"category":       "Men",
		"stock":          12,
		"rating":         0,
		"numReviews":     0,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
