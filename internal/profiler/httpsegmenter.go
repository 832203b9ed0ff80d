package profiler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wxbirds/birdvp/internal/httputil"
)

// HTTPSegmenter reaches the external segmentation model (spec.md §4.12's
// Segmenter collaborator) over HTTP, the way a model served behind a
// dedicated inference endpoint would be called from a batch job. It
// implements Segmenter.
type HTTPSegmenter struct {
	Client httputil.HTTPClient
	URL    string
}

// NewHTTPSegmenter builds an HTTPSegmenter against url using c, or
// httputil.NewStandardClient(nil) if c is nil.
func NewHTTPSegmenter(url string, c httputil.HTTPClient) *HTTPSegmenter {
	if c == nil {
		c = httputil.NewStandardClient(nil)
	}
	return &HTTPSegmenter{Client: c, URL: url}
}

type segmentRequest struct {
	Input []float64 `json:"input"`
	NElev int       `json:"n_elev"`
	Dim   int       `json:"dim"`
}

type segmentResponse struct {
	Background []float64 `json:"background"`
	Biology    []float64 `json:"biology"`
	Weather    []float64 `json:"weather"`
	Error      string    `json:"error,omitempty"`
}

// Classify POSTs the flattened input tensor as JSON and parses the three
// same-shaped score planes back out of the response body.
func (s *HTTPSegmenter) Classify(input []float64, nElev, dim int) (background, biology, weather []float64, err error) {
	body, err := json.Marshal(segmentRequest{Input: input, NElev: nElev, Dim: dim})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode segmenter request: %w", err)
	}

	resp, err := s.Client.Post(s.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("segmenter request: %w", err)
	}
	defer resp.Body.Close()

	var out segmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, nil, fmt.Errorf("decode segmenter response: %w", err)
	}
	if out.Error != "" {
		return nil, nil, nil, fmt.Errorf("segmenter: %s", out.Error)
	}

	want := nElev * dim * dim
	if len(out.Background) != want || len(out.Biology) != want || len(out.Weather) != want {
		return nil, nil, nil, fmt.Errorf("segmenter response shape mismatch: want %d values per plane, got background=%d biology=%d weather=%d",
			want, len(out.Background), len(out.Biology), len(out.Weather))
	}

	return out.Background, out.Biology, out.Weather, nil
}
