package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

// HTTPClassifier posts the raw image to an inference endpoint that answers
// {"label": "Beautiful", "confidence": 97.1}.
type HTTPClassifier struct {
	url    string
	client *http.Client
}

func NewHTTPClassifier(url string, client *http.Client) *HTTPClassifier {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClassifier{url: url, client: client}
}

type prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, img Image) (types.Label, float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(img.Data))
	if err != nil {
		return "", 0, fmt.Errorf("build request: %w", err)
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("classify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", 0, fmt.Errorf("classify: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var p prediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return "", 0, fmt.Errorf("decode prediction: %w", err)
	}
	label, err := types.ParseLabel(p.Label)
	if err != nil {
		return "", 0, fmt.Errorf("classify: %w", err)
	}
	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 100 {
		return "", 0, fmt.Errorf("classify: confidence out of range: %v", p.Confidence)
	}
	return label, p.Confidence, nil
}
