package propertyfinder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// Client talks to the PropertyFinder portal API. Authentication uses the
// portal's OAuth2 client-credentials flow; the oauth2 transport caches and
// refreshes the token transparently.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL, tokenURL, clientID, clientSecret string) *Client {
	cc := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	httpClient := cc.Client(context.Background())
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// do sends a JSON request and decodes the response into out (if non-nil).
// Portal errors become *APIError with the raw body preserved.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("portal request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read portal response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse portal response: %w", err)
		}
	}

	return nil
}

// IsNotFound reports whether err is a portal 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

func (c *Client) SearchLocations(ctx context.Context, term string) ([]Location, error) {
	var result struct {
		Results []Location `json:"results"`
	}
	path := "/locations?search=" + url.QueryEscape(term)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// GetLocationByID returns (nil, nil) when the portal does not know the id.
func (c *Client) GetLocationByID(ctx context.Context, id string) (*Location, error) {
	var loc Location
	err := c.do(ctx, http.MethodGet, "/locations/"+url.PathEscape(id), nil, &loc)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (c *Client) CreateListing(ctx context.Context, payload ListingPayload) (*Listing, error) {
	var listing Listing
	if err := c.do(ctx, http.MethodPost, "/listings", payload, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateListing is full-replace: the portal discards any field absent from
// the payload, including the compliance block.
func (c *Client) UpdateListing(ctx context.Context, id string, payload ListingPayload) error {
	return c.do(ctx, http.MethodPut, "/listings/"+url.PathEscape(id), payload, nil)
}

// GetListing returns (nil, nil) when the listing no longer exists.
func (c *Client) GetListing(ctx context.Context, id string) (*Listing, error) {
	var listing Listing
	err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), nil, &listing)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

func (c *Client) GetListings(ctx context.Context, page, perPage int) (*ListingPage, error) {
	var result ListingPage
	path := "/listings?page=" + strconv.Itoa(page) + "&per_page=" + strconv.Itoa(perPage)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PublishListing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/listings/"+url.PathEscape(id)+"/publish", nil, nil)
}

func (c *Client) UnpublishListing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/listings/"+url.PathEscape(id)+"/unpublish", nil, nil)
}

func (c *Client) CheckVerificationEligibility(ctx context.Context, id string) (*Eligibility, error) {
	var result Eligibility
	path := "/listings/" + url.PathEscape(id) + "/verification/eligibility"
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SubmitListingVerification(ctx context.Context, id, agentProfileID string) (*VerificationSubmission, error) {
	var result VerificationSubmission
	body := map[string]string{"public_profile_id": agentProfileID}
	path := "/listings/" + url.PathEscape(id) + "/verification"
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
