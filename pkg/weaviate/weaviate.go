package weaviate

import (
	"context"
	"fmt"
	"time"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
)

type Config struct {
	Host           string `split_words:"true" default:"localhost:8080"`
	Scheme         string `split_words:"true" default:"http"`
	APIKey         string `split_words:"true"`
	StartupTimeout int    `split_words:"true" default:"5"`
}

// New constructs a Weaviate client and verifies the instance is ready.
// The client is built once at startup and injected; callers own its
// lifecycle.
func (c *Config) New() (*weaviate.Client, error) {
	cfg := weaviate.Config{
		Host:   c.Host,
		Scheme: c.Scheme,
	}
	if c.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: c.APIKey}
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.StartupTimeout)*time.Second)
	defer cancel()

	ready, err := client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, fmt.Errorf("weaviate at %s://%s is not ready", c.Scheme, c.Host)
	}

	return client, nil
}

func (c *Config) MustNew() *weaviate.Client {
	client, err := c.New()
	if err != nil {
		panic(err)
	}
	return client
}
