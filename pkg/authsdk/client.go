package authsdk

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Cookie names set by the service.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Client talks to the Lost & Found authentication service. Session cookies
// are kept in the HTTP client's cookie jar, so one Client is one browser-like
// session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with its own cookie jar.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil) // never fails without options

	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Cookie returns the value of a cookie currently held for the service, or ""
// if there is none.
func (c *Client) Cookie(name string) string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL + "/")
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// HasSession reports whether the jar holds an access or refresh cookie.
func (c *Client) HasSession() bool {
	return c.Cookie(AccessTokenCookie) != "" || c.Cookie(RefreshTokenCookie) != ""
}
