package zoom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/teemow/zoomsync/internal/instrumentation"
	"github.com/teemow/zoomsync/internal/logging"
)

const (
	// DefaultAPIBaseURL is the Zoom REST API root.
	DefaultAPIBaseURL = "https://api.zoom.us/v2/"

	// DefaultTokenURL is the Zoom OAuth token endpoint.
	DefaultTokenURL = "https://zoom.us/oauth/token"

	// PageSize is the number of meetings requested per listing page.
	PageSize = 100

	defaultRateLimit        = 10
	defaultRateBurst        = 10
	defaultProgressInterval = 5 * time.Second
	maxErrorBody            = 4096
)

// DeleteAction controls whether a deleted recording goes to the trash or is removed permanently.
type DeleteAction string

const (
	DeleteActionTrash  DeleteAction = "trash"
	DeleteActionDelete DeleteAction = "delete"
)

// Credentials are the server-to-server OAuth app credentials.
type Credentials struct {
	AccountID    string
	ClientID     string
	ClientSecret string
}

// Options tune the client. Zero values select the defaults.
type Options struct {
	// APIBaseURL overrides DefaultAPIBaseURL (falls back to ZOOM_API_SERVER)
	APIBaseURL string

	// TokenURL overrides DefaultTokenURL (falls back to ZOOM_OAUTH_URL)
	TokenURL string

	// RateLimit is the maximum number of API requests per second
	RateLimit rate.Limit

	// RateBurst is the limiter burst size
	RateBurst int

	// ProgressInterval is the minimum time between progress lines while streaming
	ProgressInterval time.Duration

	// HTTPClient is the base client used for the token exchange and as the
	// transport underneath the bearer client
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client talks to the Zoom API with a bearer token obtained by Authenticate.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	limiter          *rate.Limiter
	progressInterval time.Duration
	logger           *slog.Logger
}

// Authenticate exchanges the account credentials for an access token and
// returns a client that sends it on every request. There is exactly one
// token request per call.
func Authenticate(ctx context.Context, creds Credentials, opts Options) (*Client, error) {
	opts = normalizeOptions(opts)
	if creds.AccountID == "" || creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, &AuthenticationError{Err: errors.New("account id, client id and client secret are required")}
	}

	conf := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     opts.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {creds.AccountID},
		},
	}

	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	opts.Logger.Debug("authenticating using OAuth", logging.Operation("authenticate"))
	token, err := conf.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return nil, &AuthenticationError{
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       string(retrieveErr.Body),
				Err:        err,
			}
		}
		return nil, &AuthenticationError{Err: err}
	}
	opts.Logger.Debug("obtained access token",
		logging.Operation("authenticate"),
		slog.String("token", logging.SanitizeToken(token.AccessToken)))

	return New(oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)), opts), nil
}

// New wraps an already authorized HTTP client. Tests use it to substitute the transport.
func New(httpClient *http.Client, opts Options) *Client {
	opts = normalizeOptions(opts)
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient:       httpClient,
		baseURL:          opts.APIBaseURL,
		limiter:          rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		progressInterval: opts.ProgressInterval,
		logger:           logging.WithService(opts.Logger, "zoom"),
	}
}

func normalizeOptions(opts Options) Options {
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = getEnvOrDefault("ZOOM_API_SERVER", DefaultAPIBaseURL)
	}
	if !strings.HasSuffix(opts.APIBaseURL, "/") {
		opts.APIBaseURL += "/"
	}
	if opts.TokenURL == "" {
		opts.TokenURL = getEnvOrDefault("ZOOM_OAUTH_URL", DefaultTokenURL)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = defaultRateBurst
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaultProgressInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

// ListRecordings returns every meeting with cloud recordings for userID between
// from and to (inclusive, YYYY-MM-DD). All pages are fetched.
func (c *Client) ListRecordings(ctx context.Context, userID, from, to string) ([]Meeting, error) {
	ctx, span := instrumentation.StartZoomAPISpan(ctx, instrumentation.OperationList,
		attribute.String("zoom.user_id", userID),
		attribute.String("zoom.from", from),
		attribute.String("zoom.to", to))
	meetings, err := c.listRecordings(ctx, span, userID, from, to)
	instrumentation.EndSpan(span, err)
	return meetings, err
}

func (c *Client) listRecordings(ctx context.Context, span trace.Span, userID, from, to string) ([]Meeting, error) {
	c.logger.Info("obtaining meetings and recordings",
		logging.Operation("list"),
		slog.String("user", userID),
		slog.String("from", from),
		slog.String("to", to))

	var meetings []Meeting
	pageToken := ""
	for page := 1; ; page++ {
		query := url.Values{
			"page_size": {fmt.Sprint(PageSize)},
			"from":      {from},
			"to":        {to},
		}
		if pageToken != "" {
			query.Set("next_page_token", pageToken)
		}

		resp, err := c.do(ctx, http.MethodGet, "users/"+url.PathEscape(userID)+"/recordings?"+query.Encode())
		if err != nil {
			return nil, fmt.Errorf("failed to list recordings: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			body := readErrorBody(resp)
			return nil, &EnumerationError{UserID: userID, StatusCode: resp.StatusCode, Body: body}
		}

		var listing listRecordingsResponse
		err = json.NewDecoder(resp.Body).Decode(&listing)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode recordings page %d: %w", page, err)
		}

		meetings = append(meetings, listing.Meetings...)
		instrumentation.AddSpanEvent(span, "page_fetched",
			attribute.Int("page", page),
			attribute.Int("meetings", len(listing.Meetings)))
		c.logger.Debug("fetched recordings page",
			logging.Operation("list"),
			slog.Int("page", page),
			slog.Int("meetings", len(listing.Meetings)),
			slog.Int("total_records", listing.TotalRecords))

		if listing.NextPageToken == "" {
			break
		}
		pageToken = listing.NextPageToken
	}

	return meetings, nil
}

// DeleteRecording removes one recording file of a meeting. meetingID may be
// the numeric id or the instance UUID; UUIDs that Zoom requires to be double
// encoded are handled here.
func (c *Client) DeleteRecording(ctx context.Context, meetingID, recordingID string, action DeleteAction) error {
	if meetingID == "" || recordingID == "" {
		return fmt.Errorf("meeting id and recording id are required")
	}
	if action == "" {
		action = DeleteActionTrash
	}

	ctx, span := instrumentation.StartZoomAPISpan(ctx, instrumentation.OperationDelete,
		instrumentation.NewSpanAttributeBuilder().
			WithRecording(meetingID, recordingID).
			Build()...)
	err := c.deleteRecording(ctx, meetingID, recordingID, action)
	instrumentation.EndSpan(span, err)
	return err
}

func (c *Client) deleteRecording(ctx context.Context, meetingID, recordingID string, action DeleteAction) error {
	path := "meetings/" + escapeMeetingID(meetingID) +
		"/recordings/" + url.PathEscape(recordingID) +
		"?action=" + url.QueryEscape(string(action))

	resp, err := c.do(ctx, http.MethodDelete, path)
	if err != nil {
		return fmt.Errorf("failed to delete recording %s: %w", recordingID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return &RequestError{
			Op:         "delete",
			Target:     meetingID + "/" + recordingID,
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp),
		}
	}
	return nil
}

// do issues a paced request against a path relative to the API root, or an absolute URL.
func (c *Client) do(ctx context.Context, method, target string) (*http.Response, error) {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + target
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

// escapeMeetingID double encodes UUIDs that start with '/' or contain "//".
func escapeMeetingID(id string) string {
	if strings.HasPrefix(id, "/") || strings.Contains(id, "//") {
		return url.PathEscape(url.PathEscape(id))
	}
	return url.PathEscape(id)
}

func readErrorBody(resp *http.Response) string {
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return strings.TrimSpace(string(body))
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
