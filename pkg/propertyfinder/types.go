package propertyfinder

import "fmt"

// LocalizedText is the portal's bilingual text object. Arabic is optional;
// the portal accepts English-only payloads.
type LocalizedText struct {
	EN string `json:"en"`
	AR string `json:"ar,omitempty"`
}

// Price is keyed by offering type: for sales the amounts map carries a single
// "sale" entry, for rentals one entry per rent frequency (e.g. "yearly").
type Price struct {
	Type    string             `json:"type"`
	Amounts map[string]float64 `json:"amounts"`
}

// Compliance carries the advertisement permit. The portal's update endpoint
// is full-replace and rejects payloads without it, so it must be attached to
// every write.
type Compliance struct {
	Type                       string `json:"type"`
	ListingAdvertisementNumber string `json:"listing_advertisement_number"`
	CompanyLicenseNumber       string `json:"company_license_number,omitempty"`
}

type PayloadLocation struct {
	ID string `json:"id"`
}

type PayloadImage struct {
	URL string `json:"url"`
}

type PayloadMedia struct {
	Images []PayloadImage `json:"images"`
}

// ListingPayload is the exact shape accepted by the portal's create/update
// endpoints. Every field the portal knows about is mapped explicitly so that
// renamed or dropped fields fail in tests instead of vanishing silently.
type ListingPayload struct {
	Reference      string           `json:"reference"`
	Category       string           `json:"category"`
	Type           string           `json:"type"`
	OfferingType   string           `json:"offering_type"`
	FurnishingType string           `json:"furnishing_type,omitempty"`
	Title          LocalizedText    `json:"title"`
	Description    LocalizedText    `json:"description"`
	Size           float64          `json:"size"`
	Bedrooms       string           `json:"bedrooms,omitempty"`
	Bathrooms      string           `json:"bathrooms,omitempty"`
	Price          Price            `json:"price"`
	Location       *PayloadLocation `json:"location,omitempty"`
	Emirate        string           `json:"emirate,omitempty"`
	Compliance     Compliance       `json:"compliance"`
	Media          PayloadMedia     `json:"media"`
	Amenities      []string         `json:"amenities"`
	ProjectStatus  string           `json:"project_status,omitempty"`
	PublicProfile  string           `json:"assigned_to,omitempty"`
}

// ListingImage tolerates the shapes the portal has been observed to return:
// a direct url, a nested original object, or a thumbnail-only record.
type ListingImage struct {
	URL      string `json:"url,omitempty"`
	Original *struct {
		URL string `json:"url"`
	} `json:"original,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

type ListingMedia struct {
	Images []ListingImage `json:"images"`
}

type ListingLocation struct {
	ID       string `json:"id"`
	FullName string `json:"full_name,omitempty"`
	Name     string `json:"name,omitempty"`
}

type ListingUser struct {
	ID              string `json:"id"`
	PublicProfileID string `json:"public_profile_id,omitempty"`
}

type Verification struct {
	Status string `json:"status"`
}

// Listing is the read shape returned by get/list endpoints.
type Listing struct {
	ID             string          `json:"id"`
	Reference      string          `json:"reference"`
	Category       string          `json:"category"`
	Type           string          `json:"type"`
	OfferingType   string          `json:"offering_type"`
	FurnishingType string          `json:"furnishing_type"`
	Title          LocalizedText   `json:"title"`
	Description    LocalizedText   `json:"description"`
	Size           float64         `json:"size"`
	Bedrooms       string          `json:"bedrooms"`
	Bathrooms      string          `json:"bathrooms"`
	Price          Price           `json:"price"`
	Location       ListingLocation `json:"location"`
	Compliance     Compliance      `json:"compliance"`
	Media          ListingMedia    `json:"media"`
	Amenities      []string        `json:"amenities"`
	State          string          `json:"state"` // draft | live
	ProjectStatus  string          `json:"project_status"`
	QualityScore   float64         `json:"quality_score"`
	AutoVerifiable bool            `json:"auto_verifiable"`
	Verification   *Verification   `json:"verification,omitempty"`
	User           *ListingUser    `json:"user,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type ListingPage struct {
	Results    []Listing  `json:"results"`
	Pagination Pagination `json:"pagination"`
}

type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"` // e.g. "Dubai > Dubai Marina"
	Type string `json:"type"`
	Lat  float64 `json:"lat,omitempty"`
	Lng  float64 `json:"lng,omitempty"`
}

// Eligibility is the portal's verification pre-check response. The portal
// has returned the failure explanation under several different keys over
// time, so all of them are kept.
type Eligibility struct {
	Eligible   bool     `json:"eligible"`
	AutoSubmit bool     `json:"auto_submit"`
	Reason     string   `json:"reason,omitempty"`
	Message    string   `json:"message,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

type VerificationSubmission struct {
	SubmissionID string `json:"submission_id,omitempty"`
	ID           string `json:"id,omitempty"`
	Status       string `json:"status,omitempty"`
}

// APIError carries the portal's HTTP status and raw response body so callers
// of user-triggered syncs can surface exactly what the portal rejected.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("propertyfinder API error (%d): %s", e.StatusCode, e.Body)
}
