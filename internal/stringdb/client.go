// Package stringdb is the HTTP client for the STRING network-biology API.
// It speaks the TSV wire format and enforces a client-side rate limit; the
// service publishes usage limits and a burst of unthrottled calls can get a
// caller blocked.
package stringdb

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/dvsite/interactome/internal/core/model"
	"github.com/dvsite/interactome/internal/metrics"
	"github.com/dvsite/interactome/internal/tsv"
)

const (
	mapEndpoint     = "/api/tsv/get_string_ids"
	networkEndpoint = "/api/tsv/network"

	// STRING returns at most this many candidate matches per query term.
	mapCandidateLimit = 5
)

// evidenceColumns are the per-channel score columns of the network endpoint.
var evidenceColumns = []string{"nscore", "fscore", "pscore", "ascore", "escore", "dscore", "tscore"}

// Config carries the remote endpoint settings. Threaded in at construction;
// nothing in this package reads process-wide state.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// CallerIdentity is sent with every request as the STRING API asks of
	// heavy users.
	CallerIdentity string
}

// Client calls the STRING mapping and network endpoints.
type Client struct {
	baseURL    string
	caller     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// MappingRow is one candidate match from the identifier-mapping endpoint.
type MappingRow struct {
	QueryTerm     string
	CanonicalID   string
	PreferredName string
	TaxonomyID    int
	MatchScore    float64
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst == 0 {
		burst = 5
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		caller:     cfg.CallerIdentity,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     logger.With().Str("component", "stringdb").Logger(),
	}
}

// MapIdentifiers resolves a batch of free-form terms in a single call.
// One request per gene is exactly what this method exists to avoid.
func (c *Client) MapIdentifiers(ctx context.Context, terms []string, species int) ([]MappingRow, error) {
	form := url.Values{
		"identifiers": {strings.Join(terms, "\r")},
		"species":     {strconv.Itoa(species)},
		"echo_query":  {"1"},
		"limit":       {strconv.Itoa(mapCandidateLimit)},
	}

	body, err := c.post(ctx, mapEndpoint, form)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	reader, err := tsv.NewReader(body, []string{"queryItem", "stringId", "ncbiTaxonId", "preferredName"})
	if err != nil {
		return nil, fmt.Errorf("mapping response: %w", err)
	}

	var rows []MappingRow
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("mapping response: %w", err)
		}
		taxon, _ := strconv.Atoi(row["ncbiTaxonId"])
		score, _ := strconv.ParseFloat(row["score"], 64)
		rows = append(rows, MappingRow{
			QueryTerm:     row["queryItem"],
			CanonicalID:   row["stringId"],
			PreferredName: row["preferredName"],
			TaxonomyID:    taxon,
			MatchScore:    score,
		})
	}

	if dropped := reader.Dropped(); dropped > 0 {
		metrics.DroppedRows.WithLabelValues("map").Add(float64(dropped))
		c.logger.Warn().Int("dropped", dropped).Msg("mapping response contained malformed rows")
	}
	return rows, nil
}

// FetchInteractions fetches the interaction network for a resolved identifier
// set. Scores arrive as 0-1 floats and are rescaled to the 0-1000 integer
// range the rest of the system uses.
func (c *Client) FetchInteractions(ctx context.Context, ids []string, threshold int, netType model.NetworkType, species int) ([]model.InteractionEdge, error) {
	form := url.Values{
		"identifiers":    {strings.Join(ids, "\r")},
		"species":        {strconv.Itoa(species)},
		"required_score": {strconv.Itoa(threshold)},
	}
	// "full" is the service default and is requested by omitting the
	// network_type parameter.
	if netType == model.NetworkPhysical || netType == model.NetworkFunctional {
		form.Set("network_type", string(netType))
	}

	body, err := c.post(ctx, networkEndpoint, form)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	reader, err := tsv.NewReader(body, []string{"stringId_A", "stringId_B", "score"})
	if err != nil {
		return nil, fmt.Errorf("network response: %w", err)
	}

	var edges []model.InteractionEdge
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("network response: %w", err)
		}
		score, err := strconv.ParseFloat(row["score"], 64)
		if err != nil {
			return nil, fmt.Errorf("network response: bad combined score %q: %w", row["score"], err)
		}
		channels := make(map[string]int)
		for _, col := range evidenceColumns {
			if v, ok := row[col]; ok {
				if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
					channels[col] = scaleScore(f)
				}
			}
		}
		if len(channels) == 0 {
			channels = nil
		}
		edges = append(edges, model.NewInteractionEdge(row["stringId_A"], row["stringId_B"], scaleScore(score), channels))
	}

	if dropped := reader.Dropped(); dropped > 0 {
		metrics.DroppedRows.WithLabelValues("network").Add(float64(dropped))
		c.logger.Warn().Int("dropped", dropped).Msg("network response contained malformed rows")
	}
	return edges, nil
}

// scaleScore converts STRING's 0-1 float score to the 0-1000 integer scale.
func scaleScore(f float64) int {
	s := int(math.Round(f * 1000))
	if s < 0 {
		s = 0
	}
	if s > 1000 {
		s = 1000
	}
	return s
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if c.caller != "" {
		form.Set("caller_identity", c.caller)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RemoteCalls.WithLabelValues(strings.TrimPrefix(endpoint, "/api/tsv/")).Inc()
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	c.logger.Debug().Str("endpoint", endpoint).Dur("elapsed", time.Since(start)).Msg("remote call completed")
	return resp.Body, nil
}
