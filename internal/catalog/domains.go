package catalog

import "github.com/Lumos-Labs-HQ/autoseed/internal/seeder"

const (
	DomainBrands         = "brands"
	DomainModels         = "models"
	DomainTrims          = "trims"
	DomainOBDCodes       = "obd_codes"
	DomainCities         = "cities"
	DomainServices       = "services"
	DomainPaymentMethods = "payment_methods"
	DomainParts          = "parts"
)

var collections = map[string]string{
	DomainBrands:         "car_brands",
	DomainModels:         "car_models",
	DomainTrims:          "car_trims",
	DomainOBDCodes:       "obd_codes",
	DomainCities:         "cities",
	DomainServices:       "services",
	DomainPaymentMethods: "payment_methods",
	DomainParts:          "car_parts",
}

// Domains lists every seeded domain in declaration order.
func Domains() []seeder.Domain {
	return []seeder.Domain{
		{
			Name:          DomainBrands,
			Collection:    collections[DomainBrands],
			Priority:      seeder.PriorityCritical,
			GroupBy:       "country",
			Required:      []string{"name", "country", "logo"},
			AssetCategory: "brands",
			Generate:      Brands,
		},
		{
			Name:       DomainModels,
			Collection: collections[DomainModels],
			Priority:   seeder.PriorityHigh,
			DependsOn:  []string{DomainBrands},
			GroupBy:    "type",
			Required:   []string{"name", "brand", "brandId"},
			Generate:   Models,
		},
		{
			Name:       DomainTrims,
			Collection: collections[DomainTrims],
			Priority:   seeder.PriorityMedium,
			DependsOn:  []string{DomainModels},
			GroupBy:    "fuel",
			Required:   []string{"name", "modelId", "engine"},
			Generate:   Trims,
		},
		{
			Name:       DomainOBDCodes,
			Collection: collections[DomainOBDCodes],
			Priority:   seeder.PriorityHigh,
			GroupBy:    "category",
			Required:   []string{"code", "description", "severity"},
			Generate:   OBDCodes,
		},
		{
			Name:          DomainPaymentMethods,
			Collection:    collections[DomainPaymentMethods],
			Priority:      seeder.PriorityHigh,
			GroupBy:       "type",
			Required:      []string{"code", "name"},
			AssetCategory: "payment-methods",
			Generate:      PaymentMethods,
		},
		{
			Name:       DomainCities,
			Collection: collections[DomainCities],
			Priority:   seeder.PriorityMedium,
			GroupBy:    "region",
			Required:   []string{"name", "region"},
			Generate:   Cities,
		},
		{
			Name:       DomainServices,
			Collection: collections[DomainServices],
			Priority:   seeder.PriorityMedium,
			GroupBy:    "category",
			Required:   []string{"name", "category", "price"},
			Generate:   Services,
		},
		{
			Name:       DomainParts,
			Collection: collections[DomainParts],
			Priority:   seeder.PriorityLow,
			DependsOn:  []string{DomainBrands},
			GroupBy:    "category",
			Required:   []string{"name", "partNumber", "price", "sku"},
			Generate:   Parts,
		},
	}
}
