package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ayusman/librasio/internal/crop"
)

// DefaultTimeout bounds one remote prediction.
const DefaultTimeout = 2 * time.Second

type predictRequest struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

type predictResponse struct {
	Probabilities []float32 `json:"probabilities"`
}

// RemoteModel calls a model server over HTTP. The server receives
// {"shape": [1,H,W,C], "data": [...]} and answers {"probabilities": [...]}.
type RemoteModel struct {
	client *resty.Client
	url    string
}

// NewRemoteModel creates a client for the model endpoint at url.
func NewRemoteModel(url string, timeout time.Duration) *RemoteModel {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RemoteModel{
		client: resty.New().SetTimeout(timeout),
		url:    url,
	}
}

// Predict sends the tensor and returns the class probabilities.
func (m *RemoteModel) Predict(ctx context.Context, input crop.Tensor) ([]float32, error) {
	var out predictResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(predictRequest{Shape: input.Shape(), Data: input.Data}).
		SetResult(&out).
		Post(m.url)
	if err != nil {
		return nil, fmt.Errorf("request model: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("model server returned %s: %s", resp.Status(), resp.String())
	}
	if len(out.Probabilities) == 0 {
		return nil, fmt.Errorf("model server returned no probabilities")
	}
	return out.Probabilities, nil
}
