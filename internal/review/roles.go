package review

// RoleConfig parameterizes a reviewer: one reviewer type, many roles.
// Role configurations are data, not a type hierarchy.
type RoleConfig struct {
	// ID is the stable machine identifier (e.g. "technical_reviewer")
	ID string

	// Name is the display name used as the fan-out map key
	// (e.g. "Technical Reviewer")
	Name string

	// Description is injected into the review prompt ("You are a ...")
	Description string

	// FocusAreas steers what the reviewer pays attention to
	FocusAreas string
}

// Canned role configurations. The UI constrains a session to 2-3 of these;
// the core accepts any set.
var (
	TechnicalRole = RoleConfig{
		ID:   "technical_reviewer",
		Name: "Technical Reviewer",
		Description: "senior technical reviewer with expertise in software architecture, " +
			"system design, and engineering best practices",
		FocusAreas: "technical accuracy, architectural soundness, scalability, " +
			"maintainability, performance considerations, and technical feasibility",
	}

	ClarityRole = RoleConfig{
		ID:   "clarity_reviewer",
		Name: "Clarity Reviewer",
		Description: "professional editor specialized in technical communication, " +
			"clarity, and audience comprehension",
		FocusAreas: "readability, clarity of expression, logical flow, completeness, " +
			"consistency, and accessibility to the target audience",
	}

	SecurityRole = RoleConfig{
		ID:   "security_reviewer",
		Name: "Security Reviewer",
		Description: "security and privacy expert specializing in threat modeling, " +
			"data protection, and security best practices",
		FocusAreas: "security vulnerabilities, data privacy, authentication and authorization, " +
			"encryption, compliance requirements, and potential attack vectors",
	}

	BusinessRole = RoleConfig{
		ID:   "business_reviewer",
		Name: "Business Reviewer",
		Description: "business analyst with expertise in product strategy, " +
			"market analysis, and business value assessment",
		FocusAreas: "business value, ROI, market fit, user needs, competitive positioning, " +
			"resource requirements, and strategic alignment",
	}

	UXRole = RoleConfig{
		ID:   "ux_reviewer",
		Name: "UX Reviewer",
		Description: "UX designer with expertise in user experience, usability, " +
			"and human-centered design principles",
		FocusAreas: "user experience, usability, accessibility, user workflows, " +
			"interaction design, and user satisfaction",
	}
)

// Roles maps display names to role configurations
var Roles = map[string]RoleConfig{
	TechnicalRole.Name: TechnicalRole,
	ClarityRole.Name:   ClarityRole,
	SecurityRole.Name:  SecurityRole,
	BusinessRole.Name:  BusinessRole,
	UXRole.Name:        UXRole,
}

// RoleNames lists the canned role names in a stable order
func RoleNames() []string {
	return []string{
		TechnicalRole.Name,
		ClarityRole.Name,
		SecurityRole.Name,
		BusinessRole.Name,
		UXRole.Name,
	}
}

// RoleByName looks up a canned role, falling back to a generic reviewer
// configured with the requested name. Unknown roles still review; they just
// review without a specialty.
func RoleByName(name string) RoleConfig {
	if cfg, ok := Roles[name]; ok {
		return cfg
	}
	return RoleConfig{
		ID:          "reviewer",
		Name:        name,
		Description: "professional reviewer",
		FocusAreas:  "quality and accuracy",
	}
}
