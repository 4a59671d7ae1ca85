// client.go owns the authenticated session with the site, every outbound
// request of a run goes through one Client.

package learnedleague

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"ll-analytics/internal/components/assert"
	"ll-analytics/internal/components/telemetry"
	"ll-analytics/lib/restyutil"
	libtelemetry "ll-analytics/lib/telemetry"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("ll-analytics/scrapers/learnedleague")

const (
	report_client_login  = "client.login"
	report_client_fetch  = "client.fetch"
	report_client_logout = "client.logout"
)

var (
	// ErrAuthFailed means the credentials were rejected or the login could
	// not be verified, nothing else should be fetched with the client.
	ErrAuthFailed = errors.New("learnedleague: authentication failed")
	// ErrFetchFailed wraps network errors, timeouts, non-2xx responses and
	// bodies that could not be read as html.
	ErrFetchFailed = errors.New("learnedleague: fetch failed")
)

const (
	DefaultBaseUrl = "https://learnedleague.com"
	DefaultDelay   = 1500 * time.Millisecond
	DefaultTimeout = 30 * time.Second

	userAgent = "LL-Analytics/1.0 (Personal analytics tool)"
)

type ClientOptions struct {
	BaseUrl  string
	Username string
	Password string
	// Delay is the minimum time between two requests, defaults to DefaultDelay.
	Delay time.Duration
	// Timeout bounds each request, defaults to DefaultTimeout.
	Timeout time.Duration
	// CloudflareBypass wraps the transport with cloudflare-bp.
	CloudflareBypass bool
	// InstrumentOutput receives a dump of every request/response when set.
	InstrumentOutput restyutil.InstrumentOutput
}

// Client is a rate limited, authenticated session. It is not safe for
// concurrent use, the pipeline using it is sequential.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	username string
	password string
	loggedIn bool
	limiter  *rate.Limiter
	tel      telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("learnedleague", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	baseUrl, err := url.Parse(strings.TrimSuffix(opts.BaseUrl, "/"))
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(baseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	// burst of 1 means every request after the first waits for a full delay
	limiter := rate.NewLimiter(rate.Every(opts.Delay), 1)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, tel)
	libtelemetry.InstrumentResty(client, "ll-analytics/scrapers/learnedleague/http")
	restyutil.InstrumentClient(client, opts.InstrumentOutput)

	return &Client{
		BaseUrl:  baseUrl,
		Http:     client,
		username: opts.Username,
		password: opts.Password,
		limiter:  limiter,
		tel:      tel,
	}, nil
}

// Username is the account the client logs in as.
func (c *Client) Username() string {
	return c.username
}

func (c *Client) LoggedIn() bool {
	return c.loggedIn
}

func (c *Client) get(ctx context.Context, path string) (*resty.Response, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return res, fmt.Errorf("unexpected status %s", res.Status())
	}
	return res, nil
}

func parseBody(res *resty.Response) (*goquery.Document, error) {
	body := res.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// loginMarkers are only rendered for an authenticated session.
var loginMarkers = []string{"ucp.php?mode=logout", "Logout"}

func hasLoginMarker(body []byte) bool {
	for _, marker := range loginMarkers {
		if bytes.Contains(body, []byte(marker)) {
			return true
		}
	}
	return false
}

// Login authenticates the session. The site answers 200 for both good and
// bad credentials so success is decided by looking for a logout link on a
// page that only renders it for authenticated users.
func (c *Client) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	loginError := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	if c.username == "" || c.password == "" {
		return loginError(fmt.Errorf("missing username or password"))
	}

	res, err := c.get(ctx, LoginPath())
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("login page: %w", err))
		return loginError(err)
	}
	form := map[string]string{}
	doc, err := parseBody(res)
	if err == nil {
		// phpbb expects its hidden form tokens to be echoed back
		doc.Find("form input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
			name, ok := input.Attr("name")
			if ok && name != "" {
				form[name] = input.AttrOr("value", "")
			}
		})
	}
	form["username"] = c.username
	form["password"] = c.password
	form["login"] = "Login"
	form["redirect"] = "index.php"

	_, err = c.Http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(LoginPath())
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("login request: %w", err))
		return loginError(err)
	}

	res, err = c.get(ctx, IndexPath())
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("verify login: %w", err))
		return loginError(err)
	}
	if !hasLoginMarker(res.Body()) {
		err := fmt.Errorf("no logout link on %s", IndexPath())
		c.tel.ReportWarning(report_client_login, err, c.username)
		return loginError(err)
	}

	c.loggedIn = true
	c.tel.ReportDebug("logged in", c.username)
	return nil
}

// Fetch requests one page and parses it. Failures wrap ErrFetchFailed and
// are never retried here.
func (c *Client) Fetch(ctx context.Context, path string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	fetchError := func(err error) error {
		c.tel.ReportBroken(report_client_fetch, err, path)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, path, err)
	}

	res, err := c.get(ctx, path)
	if err != nil {
		return nil, fetchError(err)
	}
	doc, err := parseBody(res)
	if err != nil {
		return nil, fetchError(err)
	}
	return doc, nil
}

// Logout ends the session on the site and drops all cookies.
func (c *Client) Logout(ctx context.Context) error {
	if !c.loggedIn {
		return nil
	}
	c.loggedIn = false

	_, err := c.get(ctx, LogoutPath())
	if err != nil {
		c.tel.ReportWarning(report_client_logout, err)
	}
	jar, jarErr := cookiejar.New(nil)
	if jarErr == nil {
		c.Http.SetCookieJar(jar)
	}
	return err
}
