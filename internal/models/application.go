package models

import "time"

// Application status values.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusInReview  = "in-review"
	StatusApproved  = "approved"
	StatusDenied    = "denied"
)

// Loan type discriminator values carried in LoanInfo.LoanType.
const (
	LoanTypeBusiness  = "Business"
	LoanTypeEquipment = "Equipment"
)

// Application is a submitted loan request. ID is a 6-digit numeric string,
// unique across all stored applications at assignment time.
type Application struct {
	ID              string           `json:"id"`
	PersonalInfo    PersonalInfo     `json:"personalInfo"`
	BusinessInfo    BusinessInfo     `json:"businessInfo"`
	LoanInfo        LoanInfo         `json:"loanInfo"`
	CoApplicantInfo *CoApplicantInfo `json:"coApplicantInfo,omitempty"`
	Documents       []DocumentRef    `json:"documents,omitempty"`
	Signature       string           `json:"signature,omitempty"` // data-URL encoded image
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type PersonalInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	DOB       string `json:"dob,omitempty"`
}

type BusinessInfo struct {
	BusinessName    string `json:"businessName"`
	EntityType      string `json:"entityType,omitempty"`
	EIN             string `json:"ein,omitempty"`
	YearsInBusiness string `json:"yearsInBusiness,omitempty"`
	AnnualRevenue   string `json:"annualRevenue,omitempty"`
	Address         string `json:"address,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	Zip             string `json:"zip,omitempty"`
}

// LoanInfo is the base loan request plus the extra fields carried by the
// equipment and business variants. LoanType discriminates.
type LoanInfo struct {
	LoanType        string  `json:"loanType"`
	AmountRequested float64 `json:"amountRequested"`
	Purpose         string  `json:"purpose,omitempty"`
	Term            string  `json:"term,omitempty"`

	// Equipment loans only.
	EquipmentDescription string  `json:"equipmentDescription,omitempty"`
	EquipmentCost        float64 `json:"equipmentCost,omitempty"`
	VendorName           string  `json:"vendorName,omitempty"`

	// Business loans only.
	MonthlyRevenue float64 `json:"monthlyRevenue,omitempty"`
	CreditScore    string  `json:"creditScore,omitempty"`
}

type CoApplicantInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// DocumentRef points at an uploaded supporting document.
type DocumentRef struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
	SizeBytes   int64  `json:"sizeBytes,omitempty"`
}

// SubmissionRequest is the public intake payload before an identifier is
// assigned. Shape mirrors Application minus the server-assigned fields.
type SubmissionRequest struct {
	PersonalInfo    PersonalInfo     `json:"personalInfo"`
	BusinessInfo    BusinessInfo     `json:"businessInfo"`
	LoanInfo        LoanInfo         `json:"loanInfo"`
	CoApplicantInfo *CoApplicantInfo `json:"coApplicantInfo,omitempty"`
	Documents       []DocumentRef    `json:"documents,omitempty"`
	Signature       string           `json:"signature,omitempty"`
}
