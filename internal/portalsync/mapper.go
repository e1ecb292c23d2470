package portalsync

import (
	"fmt"
	"strconv"
	"strings"

	propdomain "propdesk-backend/internal/property/domain"
	"propdesk-backend/pkg/propertyfinder"
)

// Portal validation windows. The portal rejects titles and descriptions
// outside these bounds, so the mapper pads/truncates to guarantee every
// payload passes regardless of input quality.
const (
	titleMinLen       = 30
	titleMaxLen       = 50
	descriptionMinLen = 750
	descriptionMaxLen = 2000
)

// titleFiller is appended to short titles. It is longer than titleMinLen
// so a single append always clears the minimum even for empty input.
const titleFiller = " | Exclusive Property in the UAE"

// propertyTypeMap translates internal free-text types to the portal's
// controlled vocabulary. Unknown values pass through unchanged.
var propertyTypeMap = map[string]string{
	"apartment":     "AP",
	"villa":         "VH",
	"townhouse":     "TH",
	"penthouse":     "PH",
	"duplex":        "DX",
	"land":          "LP",
	"farm":          "FA",
	"office":        "OF",
	"shop":          "SH",
	"warehouse":     "WH",
	"full_building": "BU",
	"hotel_apartment": "HA",
}

// portalTypeMap is the reverse of propertyTypeMap, used by the importer.
var portalTypeMap = func() map[string]string {
	m := make(map[string]string, len(propertyTypeMap))
	for internal, portal := range propertyTypeMap {
		m[portal] = internal
	}
	return m
}()

var furnishingMap = map[string]string{
	"furnished":      "furnished",
	"unfurnished":    "unfurnished",
	"semi-furnished": "semi_furnished",
	"semi_furnished": "semi_furnished",
	"partly":         "semi_furnished",
}

// emirateMap translates display names to portal region slugs. Unlike the
// other tables this one does not pass unknown values through: the portal
// rejects unknown regions, so unmapped emirates fall back to Dubai.
var emirateMap = map[string]string{
	"dubai":          "dubai",
	"abu dhabi":      "abu_dhabi",
	"sharjah":        "sharjah",
	"ajman":          "ajman",
	"ras al khaimah": "ras_al_khaimah",
	"fujairah":       "fujairah",
	"umm al quwain":  "umm_al_quwain",
	"al ain":         "al_ain",
}

const defaultEmirate = "dubai"

var rentFrequencyMap = map[string]string{
	"yearly":  "yearly",
	"annual":  "yearly",
	"monthly": "monthly",
	"weekly":  "weekly",
	"daily":   "daily",
}

// Offering codes: residential/commercial crossed with sale/rent.
var offeringMap = map[string]string{
	"residential/sale": "RS",
	"residential/rent": "RR",
	"commercial/sale":  "CS",
	"commercial/rent":  "CR",
}

// amenityMap is the portal's fixed amenity allow-list. Amenities outside
// this table are dropped, not passed through.
var amenityMap = map[string]string{
	"central_ac":         "AC",
	"balcony":            "BA",
	"built_in_wardrobes": "BW",
	"kitchen_appliances": "BK",
	"covered_parking":    "CP",
	"concierge":          "CS",
	"gym":                "GY",
	"shared_gym":         "SY",
	"maids_room":         "MR",
	"pets_allowed":       "PA",
	"private_garden":     "PG",
	"private_pool":       "PP",
	"shared_pool":        "SP",
	"security":           "SE",
	"study_room":         "ST",
	"view_of_water":      "VW",
	"view_of_landmark":   "BL",
	"walk_in_closet":     "WC",
	"children_play_area": "CA",
	"barbecue_area":      "BR",
}

// BuildListingPayload maps an internal property to the portal's listing
// schema. Pure mapping, no I/O: missing optional fields get defaults
// and text fields are padded into the portal's length windows.
// agentProfileID and locationID may be empty; companyLicense comes from
// the integration config and is attached to the mandatory compliance block.
func BuildListingPayload(p *propdomain.Property, agentProfileID, locationID, companyLicense string) propertyfinder.ListingPayload {
	payload := propertyfinder.ListingPayload{
		Reference:    p.ReferenceNo,
		Category:     mapCategory(p.Category),
		Type:         mapPropertyType(p.PropertyType),
		OfferingType: mapOffering(p.Category, p.Purpose),
		Title:        propertyfinder.LocalizedText{EN: normalizeTitle(p.Title)},
		Description:  propertyfinder.LocalizedText{EN: normalizeDescription(p.Description, p.PropertyType, p.Purpose)},
		Size:         p.Size,
		Price:        mapPrice(p),
		Emirate:      mapEmirate(p.Emirate),
		Compliance: propertyfinder.Compliance{
			Type:                       "rera",
			ListingAdvertisementNumber: p.PermitNumber,
			CompanyLicenseNumber:       companyLicense,
		},
		Media:     mapMedia(p),
		Amenities: mapAmenities(p),
	}

	if furnishing, ok := furnishingMap[strings.ToLower(p.FurnishingType)]; ok {
		payload.FurnishingType = furnishing
	} else {
		payload.FurnishingType = p.FurnishingType
	}

	if !p.IsLandType() {
		payload.Bedrooms = mapBedrooms(p.Bedrooms)
		if p.Bathrooms > 0 {
			payload.Bathrooms = strconv.Itoa(p.Bathrooms)
		}
	}

	if locationID != "" {
		payload.Location = &propertyfinder.PayloadLocation{ID: locationID}
	}
	if p.ProjectStatus != "" {
		payload.ProjectStatus = p.ProjectStatus
	}
	if agentProfileID != "" {
		payload.PublicProfile = agentProfileID
	}

	return payload
}

func mapCategory(category string) string {
	if strings.EqualFold(category, "commercial") {
		return "commercial"
	}
	return "residential"
}

func mapPropertyType(propertyType string) string {
	if mapped, ok := propertyTypeMap[strings.ToLower(propertyType)]; ok {
		return mapped
	}
	return propertyType
}

func mapOffering(category, purpose string) string {
	cat := mapCategory(category)
	pur := "sale"
	if strings.EqualFold(purpose, "rent") {
		pur = "rent"
	}
	return offeringMap[cat+"/"+pur]
}

func mapEmirate(emirate string) string {
	if mapped, ok := emirateMap[strings.ToLower(strings.TrimSpace(emirate))]; ok {
		return mapped
	}
	return defaultEmirate
}

func mapRentFrequency(frequency string) string {
	if mapped, ok := rentFrequencyMap[strings.ToLower(frequency)]; ok {
		return mapped
	}
	return "yearly"
}

// mapPrice keys the amounts map by offering type: a single "sale" entry
// for sales, one entry per rent frequency for rentals.
func mapPrice(p *propdomain.Property) propertyfinder.Price {
	if strings.EqualFold(p.Purpose, "rent") {
		return propertyfinder.Price{
			Type:    "rent",
			Amounts: map[string]float64{mapRentFrequency(p.RentFrequency): p.Price},
		}
	}
	return propertyfinder.Price{
		Type:    "sale",
		Amounts: map[string]float64{"sale": p.Price},
	}
}

func mapBedrooms(bedrooms int) string {
	if bedrooms <= 0 {
		return "studio"
	}
	return strconv.Itoa(bedrooms)
}

func mapMedia(p *propdomain.Property) propertyfinder.PayloadMedia {
	var images []propertyfinder.PayloadImage
	if p.CoverPhoto != "" {
		images = append(images, propertyfinder.PayloadImage{URL: p.CoverPhoto})
	}
	for _, url := range p.Images {
		if url == "" || url == p.CoverPhoto {
			continue
		}
		images = append(images, propertyfinder.PayloadImage{URL: url})
	}
	return propertyfinder.PayloadMedia{Images: images}
}

// mapAmenities filters to the portal allow-list. Land and farm listings
// always get an empty list; the portal rejects amenities on them.
func mapAmenities(p *propdomain.Property) []string {
	if p.IsLandType() {
		return []string{}
	}
	amenities := []string{}
	for _, a := range p.Amenities {
		if code, ok := amenityMap[strings.ToLower(strings.TrimSpace(a))]; ok {
			amenities = append(amenities, code)
		}
	}
	return amenities
}

func normalizeTitle(title string) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen])
	}
	for len(runes) < titleMinLen {
		runes = append(runes, []rune(titleFiller)...)
	}
	if len(runes) > titleMaxLen {
		runes = runes[:titleMaxLen]
	}
	return string(runes)
}

// normalizeDescription pads short descriptions with deterministic
// boilerplate built from the property type and purpose, and truncates
// long ones. Output length is always within [descriptionMinLen,
// descriptionMaxLen] for inputs up to several thousand characters.
func normalizeDescription(description, propertyType, purpose string) string {
	runes := []rune(strings.TrimSpace(description))
	if len(runes) > descriptionMaxLen {
		runes = runes[:descriptionMaxLen]
	}
	if len(runes) >= descriptionMinLen {
		return string(runes)
	}

	blocks := descriptionBoilerplate(propertyType, purpose)
	for i := 0; len(runes) < descriptionMinLen; i++ {
		block := blocks[i%len(blocks)]
		if len(runes) > 0 {
			runes = append(runes, []rune("\n\n")...)
		}
		runes = append(runes, []rune(block)...)
	}
	if len(runes) > descriptionMaxLen {
		runes = runes[:descriptionMaxLen]
	}
	return string(runes)
}

func descriptionBoilerplate(propertyType, purpose string) []string {
	if propertyType == "" {
		propertyType = "property"
	}
	action := "purchase"
	if strings.EqualFold(purpose, "rent") {
		action = "rent"
	}
	return []string{
		fmt.Sprintf("This %s is now available for %s through our agency. It is presented in excellent condition and offers a practical layout suited to a wide range of requirements. The listing is managed by a dedicated consultant who can arrange a viewing at short notice and answer any questions about the unit, the building and the surrounding community.", propertyType, action),
		fmt.Sprintf("The %s is well connected to major road networks, schools, retail and leisure destinations, making day-to-day living straightforward for families and professionals alike. Full details of the specification, service charges and availability are provided on request.", propertyType),
		fmt.Sprintf("Contact us today to register your interest in this %s and to receive the complete information pack, including floor plans and payment options where applicable.", propertyType),
	}
}
