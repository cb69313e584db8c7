package obs

import (
	"context"
	"testing"
)

func TestInitTracerWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "", "telicommunity-api", "test")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected no error on shutdown, got %v", err)
	}
}
