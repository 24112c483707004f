package compliance

// Static law definitions and geography mapping. Reference data only; the
// service never mutates these.

func hours(h int) *int { return &h }

var privacyLaws = map[Jurisdiction]Law{
	JurisdictionEU: {
		Name:            "GDPR",
		FullName:        "General Data Protection Regulation",
		Region:          "European Union",
		StrictnessScore: 0.95,
		Requirements: Requirements{
			ConsentRequired:             true,
			ExplicitConsentForSensitive: true,
			RightToErasure:              true,
			DataPortability:             true,
			BreachNotificationHours:     hours(72),
			DPORequired:                 true,
			CrossBorderRestrictions:     true,
			ProfilingOptOut:             true,
			AutomatedDecisionRights:     true,
			PurposeLimitation:           PurposeLimitationStrict,
			DataMinimization:            true,
			RetentionLimits:             true,
		},
	},
	JurisdictionUSCA: {
		Name:            "CCPA",
		FullName:        "California Consumer Privacy Act",
		Region:          "California, USA",
		StrictnessScore: 0.75,
		Requirements: Requirements{
			// Opt-out model: no up-front consent requirement.
			ConsentRequired:         false,
			RightToErasure:          true,
			DataPortability:         true,
			ProfilingOptOut:         true,
			AutomatedDecisionRights: true,
			PurposeLimitation:       PurposeLimitationModerate,
		},
	},
	JurisdictionIndia: {
		Name:            "DPDP",
		FullName:        "Digital Personal Data Protection Act",
		Region:          "India",
		StrictnessScore: 0.85,
		Requirements: Requirements{
			ConsentRequired:             true,
			ExplicitConsentForSensitive: true,
			RightToErasure:              true,
			DPORequired:                 true,
			CrossBorderRestrictions:     true,
			PurposeLimitation:           PurposeLimitationStrict,
			DataMinimization:            true,
			RetentionLimits:             true,
		},
	},
	JurisdictionUK: {
		Name:            "UK GDPR",
		FullName:        "UK General Data Protection Regulation",
		Region:          "United Kingdom",
		StrictnessScore: 0.93,
		Requirements: Requirements{
			ConsentRequired:             true,
			ExplicitConsentForSensitive: true,
			RightToErasure:              true,
			DataPortability:             true,
			BreachNotificationHours:     hours(72),
			DPORequired:                 true,
			CrossBorderRestrictions:     true,
			ProfilingOptOut:             true,
			AutomatedDecisionRights:     true,
			PurposeLimitation:           PurposeLimitationStrict,
			DataMinimization:            true,
			RetentionLimits:             true,
		},
	},
	JurisdictionBrazil: {
		Name:            "LGPD",
		FullName:        "Lei Geral de Protecao de Dados",
		Region:          "Brazil",
		StrictnessScore: 0.80,
		Requirements: Requirements{
			ConsentRequired:             true,
			ExplicitConsentForSensitive: true,
			RightToErasure:              true,
			DataPortability:             true,
			DPORequired:                 true,
			CrossBorderRestrictions:     true,
			PurposeLimitation:           PurposeLimitationModerate,
			DataMinimization:            true,
			RetentionLimits:             true,
		},
	},
	JurisdictionSG: {
		Name:            "PDPA",
		FullName:        "Personal Data Protection Act",
		Region:          "Singapore",
		StrictnessScore: 0.70,
		Requirements: Requirements{
			ConsentRequired:         true,
			DataPortability:         true,
			BreachNotificationHours: hours(72),
			DPORequired:             true,
			CrossBorderRestrictions: true,
			PurposeLimitation:       PurposeLimitationModerate,
			RetentionLimits:         true,
		},
	},
}

// geoMapping maps upper-cased location codes to jurisdictions. Note the
// deliberate quirk inherited from the reference data: bare "CA" is treated
// as California, not Canada.
var geoMapping = map[string]Jurisdiction{
	// EU countries
	"DE": JurisdictionEU, "FR": JurisdictionEU, "IT": JurisdictionEU,
	"ES": JurisdictionEU, "NL": JurisdictionEU, "BE": JurisdictionEU,
	"PL": JurisdictionEU, "SE": JurisdictionEU, "AT": JurisdictionEU,
	"IE": JurisdictionEU, "PT": JurisdictionEU, "FI": JurisdictionEU,
	"EU": JurisdictionEU,

	// UK
	"GB": JurisdictionUK, "UK": JurisdictionUK,

	// US states with privacy laws
	"US_CA": JurisdictionUSCA, "US_VA": JurisdictionUSVA,
	"US_CO": JurisdictionUSCO, "CA": JurisdictionUSCA,

	// Other regions
	"IN": JurisdictionIndia, "INDIA": JurisdictionIndia,
	"BR": JurisdictionBrazil, "BRAZIL": JurisdictionBrazil,
	"SG": JurisdictionSG,
	"AU": JurisdictionAU,
}

// strictPurposeAllowlist is the set of purposes that satisfy a strict
// purpose-limitation requirement without an advisory finding.
var strictPurposeAllowlist = map[string]bool{
	"analytics":   true,
	"research":    true,
	"compliance":  true,
	"audit":       true,
	"operational": true,
}
