package ports

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// RateRequestClient performs a GET against the remote rate service and returns the parsed body.
// Failures are reported as ErrNetwork or ErrUpstream.
type RateRequestClient interface {
	Get(ctx context.Context, path string, params url.Values) (gjson.Result, error)
}
