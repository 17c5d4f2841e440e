package fieldmap

import (
	"tallybridge/internal/submission"
)

// Attribute names a field of an organization or person record.
type Attribute string

// Organization attributes.
const (
	OrgName                  Attribute = "name"
	OrgType                  Attribute = "type"
	OrgMCC                   Attribute = "mcc"
	OrgCountry               Attribute = "country"
	OrgAddressStreet         Attribute = "address_street"
	OrgCity                  Attribute = "city"
	OrgPostalCode            Attribute = "postal_code"
	OrgSIRET                 Attribute = "siret"
	OrgPhone                 Attribute = "phone"
	OrgVATID                 Attribute = "vat_id"
	OrgDescription           Attribute = "description"
	OrgWebsite               Attribute = "website"
	OrgIBAN                  Attribute = "iban"
	OrgLogo                  Attribute = "logo"
	OrgTagline               Attribute = "tagline"
	OrgProjectPicture        Attribute = "projectPicture"
	OrgProjectPictureCredits Attribute = "projectPictureCredits"
	OrgProjectTagline        Attribute = "projectTagline"
	OrgDonationPurpose       Attribute = "donationPurpose"
)

// Person attributes.
const (
	PersonFirstName     Attribute = "first_name"
	PersonLastName      Attribute = "last_name"
	PersonTitle         Attribute = "title"
	PersonCountry       Attribute = "country"
	PersonAddressStreet Attribute = "address_street"
	PersonCity          Attribute = "city"
	PersonPostalCode    Attribute = "postal_code"
	PersonPhone         Attribute = "phone"
	PersonDOB           Attribute = "dob"
	PersonEmail         Attribute = "email"
	PersonIDFile        Attribute = "idFile"
)

// Static defaults. MCC 8398 is charitable and social service organizations.
const (
	DefaultOrgType     = "non_profit"
	DefaultOrgMCC      = "8398"
	DefaultCountry     = "FR"
	DefaultPersonTitle = "Directeur"
)

var organizationAttributes = map[Attribute]struct{}{
	OrgName: {}, OrgType: {}, OrgMCC: {}, OrgCountry: {}, OrgAddressStreet: {}, OrgCity: {},
	OrgPostalCode: {}, OrgSIRET: {}, OrgPhone: {}, OrgVATID: {}, OrgDescription: {},
	OrgWebsite: {}, OrgIBAN: {}, OrgLogo: {}, OrgTagline: {}, OrgProjectPicture: {},
	OrgProjectPictureCredits: {}, OrgProjectTagline: {}, OrgDonationPurpose: {},
}

var personAttributes = map[Attribute]struct{}{
	PersonFirstName: {}, PersonLastName: {}, PersonTitle: {}, PersonCountry: {},
	PersonAddressStreet: {}, PersonCity: {}, PersonPostalCode: {}, PersonPhone: {},
	PersonDOB: {}, PersonEmail: {}, PersonIDFile: {},
}

// Record holds attribute values of one mapped entity.
type Record map[Attribute]submission.FieldValue

// Text returns the text of an attribute, or the empty string.
func (r Record) Text(a Attribute) string {
	return r[a].Text
}

// Files returns the file list of an attribute.
func (r Record) Files(a Attribute) []submission.FileRef {
	return r[a].Files
}

// Value returns the raw value of an attribute.
func (r Record) Value(a Attribute) submission.FieldValue {
	return r[a]
}

// Snapshot renders the record as plain data for logs and dry runs. File lists
// become lists of urls.
func (r Record) Snapshot() map[string]any {
	out := make(map[string]any, len(r))
	for a, v := range r {
		if len(v.Files) > 0 {
			urls := make([]string, len(v.Files))
			for i, f := range v.Files {
				urls[i] = f.URL
			}
			out[string(a)] = urls
			continue
		}
		out[string(a)] = v.Text
	}
	return out
}

// OrganizationRecord is the organization side of a submission.
type OrganizationRecord struct {
	Record
}

// PersonRecord is the legal representative side of a submission.
type PersonRecord struct {
	Record
	DOB DateOfBirth
}

// DateOfBirth keeps the zero padding of the submitted date.
type DateOfBirth struct {
	Year  string
	Month string
	Day   string
}

// IdentityDocument returns the first identity file, if any.
func (p PersonRecord) IdentityDocument() (submission.FileRef, bool) {
	return p.Value(PersonIDFile).FirstFile()
}

func newOrganizationRecord() OrganizationRecord {
	return OrganizationRecord{Record: Record{
		OrgType:    submission.Text(DefaultOrgType),
		OrgMCC:     submission.Text(DefaultOrgMCC),
		OrgCountry: submission.Text(DefaultCountry),
	}}
}

func newPersonRecord() PersonRecord {
	return PersonRecord{Record: Record{
		PersonTitle:   submission.Text(DefaultPersonTitle),
		PersonCountry: submission.Text(DefaultCountry),
	}}
}
