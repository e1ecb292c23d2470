package portalsync

import (
	"testing"

	agentdomain "propdesk-backend/internal/agent/domain"
	propdomain "propdesk-backend/internal/property/domain"
	"propdesk-backend/pkg/propertyfinder"

	"github.com/stretchr/testify/require"
)

func TestSanitizeTextStripsControlCharacters(t *testing.T) {
	require.Equal(t, "hello world", sanitizeText("hello\x00 world\x07"))
	require.Equal(t, "line1\nline2\ttab", sanitizeText("line1\nline2\ttab"))
}

func TestBedroomsFromPortal(t *testing.T) {
	require.Equal(t, 0, bedroomsFromPortal("studio"))
	require.Equal(t, 0, bedroomsFromPortal("Studio"))
	require.Equal(t, 3, bedroomsFromPortal("3"))
	require.Equal(t, 0, bedroomsFromPortal("garbage"))
}

func TestPriceFromPortalRentPriority(t *testing.T) {
	amount, frequency := priceFromPortal(propertyfinder.Price{
		Type:    "rent",
		Amounts: map[string]float64{"monthly": 9000, "yearly": 95000},
	})
	require.Equal(t, 95000.0, amount)
	require.Equal(t, "yearly", frequency)

	amount, frequency = priceFromPortal(propertyfinder.Price{
		Type:    "rent",
		Amounts: map[string]float64{"weekly": 3000},
	})
	require.Equal(t, 3000.0, amount)
	require.Equal(t, "weekly", frequency)
}

func TestPriceFromPortalSale(t *testing.T) {
	amount, frequency := priceFromPortal(propertyfinder.Price{
		Type:    "sale",
		Amounts: map[string]float64{"sale": 1500000},
	})
	require.Equal(t, 1500000.0, amount)
	require.Empty(t, frequency)
}

func TestImagesFromListingHandlesAllShapes(t *testing.T) {
	listing := &propertyfinder.Listing{
		Media: propertyfinder.ListingMedia{
			Images: []propertyfinder.ListingImage{
				{URL: "https://img/direct.jpg"},
				{Original: &struct {
					URL string `json:"url"`
				}{URL: "https://img/original.jpg"}},
				{Thumbnail: "https://img/thumb.jpg"},
				{},
			},
		},
	}
	require.Equal(t, []string{
		"https://img/direct.jpg",
		"https://img/original.jpg",
		"https://img/thumb.jpg",
	}, imagesFromListing(listing))
}

func TestProjectStatusInferredForNewProjects(t *testing.T) {
	require.Equal(t, "off_plan", projectStatusFromListing(&propertyfinder.Listing{
		Category: "new_projects", OfferingType: "RS",
	}))
	require.Equal(t, "under_construction", projectStatusFromListing(&propertyfinder.Listing{
		Category: "new_projects", OfferingType: "RS", ProjectStatus: "under_construction",
	}))
	require.Empty(t, projectStatusFromListing(&propertyfinder.Listing{
		Category: "new_projects", OfferingType: "RR",
	}))
}

func TestApplyListingMapsPortalRecord(t *testing.T) {
	agent := &agentdomain.Agent{ID: "agent-1", PfPublicProfileID: "profile-9"}
	lookups := &importLookups{
		agentsByProfileID: map[string]*agentdomain.Agent{"profile-9": agent},
		agentsByUserID:    map[string]*agentdomain.Agent{},
		byListingID:       map[string]*propdomain.Property{},
		byReference:       map[string]*propdomain.Property{},
	}
	listing := &propertyfinder.Listing{
		ID:           "lst-77",
		Reference:    "PD-IMP-001",
		Type:         "VH",
		OfferingType: "RR",
		Title:        propertyfinder.LocalizedText{EN: "Spacious villa with garden"},
		Description:  propertyfinder.LocalizedText{EN: "A family villa."},
		Size:         3200,
		Bedrooms:     "4",
		Bathrooms:    "5",
		Price:        propertyfinder.Price{Type: "rent", Amounts: map[string]float64{"yearly": 250000}},
		Location:     propertyfinder.ListingLocation{ID: "loc-1", FullName: "Dubai > Arabian Ranches"},
		Amenities:    []string{"PG", "PP"},
		State:        "live",
		QualityScore: 87.5,
		Verification: &propertyfinder.Verification{Status: "approved"},
		User:         &propertyfinder.ListingUser{PublicProfileID: "profile-9"},
		Media: propertyfinder.ListingMedia{Images: []propertyfinder.ListingImage{
			{URL: "https://img/1.jpg"}, {URL: "https://img/2.jpg"},
		}},
	}

	var p propdomain.Property
	applyListing(&p, listing, lookups, "Dubai > Arabian Ranches > Alvorada")

	require.Equal(t, "PD-IMP-001", p.ReferenceNo)
	require.Equal(t, "villa", p.PropertyType)
	require.Equal(t, "residential", p.Category)
	require.Equal(t, "rent", p.Purpose)
	require.Equal(t, "yearly", p.RentFrequency)
	require.Equal(t, 250000.0, p.Price)
	require.Equal(t, 4, p.Bedrooms)
	require.Equal(t, 5, p.Bathrooms)
	require.ElementsMatch(t, []string{"private_garden", "private_pool"}, p.Amenities)
	require.Equal(t, "agent-1", p.AgentID)
	require.Equal(t, "lst-77", p.PfListingID)
	require.Equal(t, "loc-1", p.PfLocationID)
	require.Equal(t, "Dubai > Arabian Ranches > Alvorada", p.PfLocationPath)
	require.True(t, p.PfPublished)
	require.Equal(t, 87.5, p.PfQualityScore)
	require.Equal(t, "approved", p.PfVerificationStatus)
	require.Equal(t, "https://img/1.jpg", p.CoverPhoto)
	require.Equal(t, propdomain.PropertyStatusActive, p.Status)
}

func TestApplyListingFallsBackToLocationFullName(t *testing.T) {
	listing := &propertyfinder.Listing{
		ID:       "lst-1",
		Location: propertyfinder.ListingLocation{ID: "loc-1", FullName: "Dubai > JVC"},
	}
	var p propdomain.Property
	applyListing(&p, listing, nil, "")
	require.Equal(t, "Dubai > JVC", p.PfLocationPath)
}
