package portalsync

import (
	"strconv"
	"strings"
	"unicode"

	agentdomain "propdesk-backend/internal/agent/domain"
	propdomain "propdesk-backend/internal/property/domain"
	"propdesk-backend/pkg/propertyfinder"
)

// importLookups are the pre-warmed maps used during bulk import so that
// per-listing agent/property resolution is an in-memory lookup rather
// than a query.
type importLookups struct {
	agentsByProfileID map[string]*agentdomain.Agent
	agentsByUserID    map[string]*agentdomain.Agent
	byListingID       map[string]*propdomain.Property
	byReference       map[string]*propdomain.Property
}

// applyListing maps a portal listing onto an internal property record,
// the reverse of BuildListingPayload. The target may be a zero-value
// Property (create) or an existing one (update); portal data overwrites
// the mapped fields either way.
func applyListing(p *propdomain.Property, listing *propertyfinder.Listing, lookups *importLookups, locationPath string) {
	p.ReferenceNo = sanitizeText(listing.Reference)
	p.Title = sanitizeText(listing.Title.EN)
	p.Description = sanitizeText(listing.Description.EN)
	p.PropertyType = propertyTypeFromPortal(listing.Type)
	p.Category, p.Purpose = categoryPurposeFromOffering(listing.OfferingType)
	p.FurnishingType = listing.FurnishingType
	p.Size = listing.Size
	p.Bedrooms = bedroomsFromPortal(listing.Bedrooms)
	p.Bathrooms = parseCount(listing.Bathrooms)
	p.Price, p.RentFrequency = priceFromPortal(listing.Price)
	p.Amenities = amenitiesFromPortal(listing.Amenities)
	p.PermitNumber = sanitizeText(listing.Compliance.ListingAdvertisementNumber)
	p.ProjectStatus = projectStatusFromListing(listing)

	images := imagesFromListing(listing)
	if len(images) > 0 {
		p.CoverPhoto = images[0]
		p.Images = images
	}

	if agent := resolveAgent(listing, lookups); agent != nil {
		p.AgentID = agent.ID
	}

	p.PfListingID = listing.ID
	p.PfLocationID = listing.Location.ID
	if locationPath != "" {
		p.PfLocationPath = locationPath
	} else if listing.Location.FullName != "" {
		p.PfLocationPath = listing.Location.FullName
	}
	p.PfPublished = listing.State == "live"
	p.PfQualityScore = listing.QualityScore
	if listing.Verification != nil {
		p.PfVerificationStatus = listing.Verification.Status
	}
	if p.Status == "" {
		p.Status = propdomain.PropertyStatusActive
	}
}

// sanitizeText strips control characters that would corrupt storage or
// downstream rendering, keeping newlines and tabs.
func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func propertyTypeFromPortal(portalType string) string {
	if internal, ok := portalTypeMap[portalType]; ok {
		return internal
	}
	return strings.ToLower(portalType)
}

func categoryPurposeFromOffering(code string) (category, purpose string) {
	switch code {
	case "RS":
		return "residential", "sale"
	case "RR":
		return "residential", "rent"
	case "CS":
		return "commercial", "sale"
	case "CR":
		return "commercial", "rent"
	}
	return "residential", "sale"
}

func bedroomsFromPortal(bedrooms string) int {
	if strings.EqualFold(bedrooms, "studio") {
		return 0
	}
	return parseCount(bedrooms)
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// priceFromPortal extracts the amount keyed by the price type: "sale"
// carries a single sale entry, "rent" one entry per frequency (the
// highest-priority frequency present wins).
func priceFromPortal(price propertyfinder.Price) (amount float64, frequency string) {
	if price.Type == "rent" {
		for _, freq := range []string{"yearly", "monthly", "weekly", "daily"} {
			if v, ok := price.Amounts[freq]; ok {
				return v, freq
			}
		}
		// Unknown frequency key: take whatever is there
		for freq, v := range price.Amounts {
			return v, freq
		}
		return 0, ""
	}
	if v, ok := price.Amounts["sale"]; ok {
		return v, ""
	}
	for _, v := range price.Amounts {
		return v, ""
	}
	return 0, ""
}

var portalAmenityMap = func() map[string]string {
	m := make(map[string]string, len(amenityMap))
	for internal, portal := range amenityMap {
		m[portal] = internal
	}
	return m
}()

func amenitiesFromPortal(codes []string) []string {
	var amenities []string
	for _, code := range codes {
		if internal, ok := portalAmenityMap[code]; ok {
			amenities = append(amenities, internal)
		}
	}
	return amenities
}

// projectStatusFromListing prefers the explicit flag; absent that, an
// off-plan sale offering is inferred from the portal category.
func projectStatusFromListing(listing *propertyfinder.Listing) string {
	if listing.ProjectStatus != "" {
		return listing.ProjectStatus
	}
	if listing.Category == "new_projects" && (listing.OfferingType == "RS" || listing.OfferingType == "CS") {
		return "off_plan"
	}
	return ""
}

// imagesFromListing extracts URLs from the shapes the portal has been
// observed to return (direct url, nested original, thumbnail-only).
func imagesFromListing(listing *propertyfinder.Listing) []string {
	var urls []string
	for _, img := range listing.Media.Images {
		switch {
		case img.URL != "":
			urls = append(urls, img.URL)
		case img.Original != nil && img.Original.URL != "":
			urls = append(urls, img.Original.URL)
		case img.Thumbnail != "":
			urls = append(urls, img.Thumbnail)
		}
	}
	return urls
}

// resolveAgent matches the listing's portal user to a local agent by
// public profile id first, then by portal user id.
func resolveAgent(listing *propertyfinder.Listing, lookups *importLookups) *agentdomain.Agent {
	if listing.User == nil || lookups == nil {
		return nil
	}
	if listing.User.PublicProfileID != "" {
		if agent, ok := lookups.agentsByProfileID[listing.User.PublicProfileID]; ok {
			return agent
		}
	}
	if listing.User.ID != "" {
		if agent, ok := lookups.agentsByUserID[listing.User.ID]; ok {
			return agent
		}
	}
	return nil
}
