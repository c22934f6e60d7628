package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext carries the HTTP state of one scenario.
type TestContext struct {
	BaseURL    string
	SigningKey string
	HTTPClient *http.Client

	accessToken  string
	initials     string
	lastStatus   int
	lastBody     []byte
	lastResponse any
}

func NewTestContext(baseURL, signingKey string) *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		SigningKey: signingKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.accessToken = ""
	tc.initials = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastResponse = nil
}

// SignIn mints a token for initials with the server's signing key.
func (tc *TestContext) SignIn(initials string) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"initials": initials,
		"sub":      strings.ToLower(initials),
		"iss":      "presence",
		"aud":      []string{"presence-api"},
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(tc.SigningKey))
	if err != nil {
		return err
	}
	tc.accessToken = signed
	tc.initials = initials
	return nil
}

func (tc *TestContext) SignOut() {
	tc.accessToken = ""
	tc.initials = ""
}

func (tc *TestContext) GetSignedInInitials() string {
	return tc.initials
}

func (tc *TestContext) GetAccessToken() string {
	return tc.accessToken
}

func (tc *TestContext) POST(path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(raw))
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, tc.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastResponse = nil
	if len(tc.lastBody) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(tc.lastBody, &tc.lastResponse); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (tc *TestContext) GetLastStatusCode() int {
	return tc.lastStatus
}

// DecodeLast decodes the last response body into v.
func (tc *TestContext) DecodeLast(v any) error {
	return json.Unmarshal(tc.lastBody, v)
}

// GetResponseField returns a top-level field of the last JSON object.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	obj, ok := tc.lastResponse.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	v, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response", field)
	}
	return v, nil
}
