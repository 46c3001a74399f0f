package models

// PolicyKind names one of the five policy texts.
type PolicyKind string

const (
	PolicyAbout    PolicyKind = "about"
	PolicyRefund   PolicyKind = "refund"
	PolicyTerms    PolicyKind = "terms"
	PolicyShipping PolicyKind = "shipping"
	PolicyPrivacy  PolicyKind = "privacy"
)

// PolicySet is the singleton record stored at policies.
type PolicySet struct {
	About    string `json:"about"`
	Refund   string `json:"refund"`
	Terms    string `json:"terms"`
	Shipping string `json:"shipping"`
	Privacy  string `json:"privacy"`
}

// Text returns the text for kind and whether kind is known.
func (p *PolicySet) Text(kind PolicyKind) (string, bool) {
	switch kind {
	case PolicyAbout:
		return p.About, true
	case PolicyRefund:
		return p.Refund, true
	case PolicyTerms:
		return p.Terms, true
	case PolicyShipping:
		return p.Shipping, true
	case PolicyPrivacy:
		return p.Privacy, true
	}
	return "", false
}
