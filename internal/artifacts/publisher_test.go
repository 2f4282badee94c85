package artifacts_test

import (
	"context"
	"testing"

	"storyreel/internal/artifacts"
	"storyreel/internal/config"
)

func TestNewPublisherDisabledReturnsNoop(t *testing.T) {
	cfg := config.Default()
	cfg.Artifacts.Enabled = false

	pub, err := artifacts.NewPublisher(&cfg)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if pub.Enabled() {
		t.Fatal("disabled publisher reports enabled")
	}
	url, err := pub.PublishFinalVideo(context.Background(), "proj-1", "/tmp/final.mp4")
	if err != nil {
		t.Fatalf("noop publish returned error: %v", err)
	}
	if url != "" {
		t.Fatalf("noop publish returned url %q", url)
	}
}

func TestNewPublisherEnabledRequiresEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Artifacts.Enabled = true
	cfg.Artifacts.Endpoint = ""

	if _, err := artifacts.NewPublisher(&cfg); err == nil {
		t.Fatal("expected configuration error for missing endpoint")
	}
}

func TestNewPublisherEnabledBuildsClient(t *testing.T) {
	cfg := config.Default()
	cfg.Artifacts.Enabled = true
	cfg.Artifacts.Endpoint = "localhost:9000"
	cfg.Artifacts.AccessKey = "key"
	cfg.Artifacts.SecretKey = "secret"
	cfg.Artifacts.Bucket = "storyreel"

	pub, err := artifacts.NewPublisher(&cfg)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if !pub.Enabled() {
		t.Fatal("enabled publisher reports disabled")
	}
}
