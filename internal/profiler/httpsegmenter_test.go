package profiler

import (
	"errors"
	"testing"

	"github.com/wxbirds/birdvp/internal/httputil"
	"github.com/wxbirds/birdvp/internal/testutil"
)

func TestHTTPSegmenter_Classify(t *testing.T) {
	const nElev, dim = 1, 2
	plane := `[0,0,0,0]`
	body := `{"background":` + plane + `,"biology":` + plane + `,"weather":` + plane + `}`

	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(200, body)

	seg := NewHTTPSegmenter("http://model.invalid/classify", mock)
	background, biology, weather, err := seg.Classify(make([]float64, 3*nElev*dim*dim), nElev, dim)
	testutil.AssertNoError(t, err)

	if len(background) != nElev*dim*dim || len(biology) != nElev*dim*dim || len(weather) != nElev*dim*dim {
		t.Fatalf("unexpected plane lengths: background=%d biology=%d weather=%d", len(background), len(biology), len(weather))
	}
	if mock.RequestCount() != 1 {
		t.Fatalf("expected exactly one request, got %d", mock.RequestCount())
	}
	req := mock.GetRequest(0)
	if req.URL.String() != "http://model.invalid/classify" {
		t.Errorf("unexpected request URL: %s", req.URL.String())
	}
}

func TestHTTPSegmenter_ShapeMismatchIsError(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(200, `{"background":[0],"biology":[0],"weather":[0]}`)

	seg := NewHTTPSegmenter("http://model.invalid/classify", mock)
	_, _, _, err := seg.Classify(make([]float64, 3*2*2), 1, 2)
	testutil.AssertError(t, err)
}

func TestHTTPSegmenter_TransportErrorPropagates(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.DefaultError = errors.New("connection refused")

	seg := NewHTTPSegmenter("http://model.invalid/classify", mock)
	_, _, _, err := seg.Classify(make([]float64, 3*2*2), 1, 2)
	testutil.AssertError(t, err)
}
