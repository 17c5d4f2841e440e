package fieldmap

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Dictionary maps a form field key to a record attribute.
type Dictionary map[string]Attribute

// Dictionaries is the full remapping configuration of a form.
type Dictionaries struct {
	Organization Dictionary `yaml:"organization"`
	Person       Dictionary `yaml:"person"`
}

// DefaultDictionaries returns the question ids of the production onboarding form.
// Address and phone questions feed both records.
func DefaultDictionaries() Dictionaries {
	return Dictionaries{
		Organization: Dictionary{
			"question_ja2KXR": OrgName,
			"question_2E52zp": OrgAddressStreet,
			"question_xXBGEG": OrgCity,
			"question_ZjyxX0": OrgPostalCode,
			"question_QKyGpg": OrgSIRET,
			"question_A75kYB": OrgPhone,
			"question_9q5eYG": OrgVATID,
			"question_QoR0X7": OrgDescription,
			"question_Qo7eZX": OrgWebsite,
			"question_9N79k5": OrgIBAN,
			// secondary platform only
			"question_q5GPpG": OrgLogo,
			"question_5Xx8yZ": OrgTagline,
			"question_9NZlaQ": OrgProjectPicture,
			"question_dbdK5d": OrgProjectPictureCredits,
			"question_YjapLW": OrgProjectTagline,
			"question_DqzAlN": OrgDonationPurpose,
		},
		Person: Dictionary{
			"question_eqPbGq": PersonFirstName,
			"question_WOd46J": PersonLastName,
			"question_2E52zp": PersonAddressStreet,
			"question_xXBGEG": PersonCity,
			"question_ZjyxX0": PersonPostalCode,
			"question_A75kYB": PersonPhone,
			"question_aQoW19": PersonDOB,
			"question_b5GaMe": PersonEmail,
			"question_685qYe": PersonIDFile,
		},
	}
}

// LoadDictionaries reads dictionaries from a YAML file of the form
//
//	organization:
//	  question_ja2KXR: name
//	person:
//	  question_aQoW19: dob
func LoadDictionaries(path string) (Dictionaries, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Dictionaries{}, fmt.Errorf("read field map: %w", err)
	}
	var d Dictionaries
	if err := yaml.Unmarshal(b, &d); err != nil {
		return Dictionaries{}, fmt.Errorf("parse field map %s: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return Dictionaries{}, fmt.Errorf("field map %s: %w", path, err)
	}
	return d, nil
}

// Validate rejects attributes the target record does not define.
func (d Dictionaries) Validate() error {
	if len(d.Organization) == 0 && len(d.Person) == 0 {
		return fmt.Errorf("dictionaries are empty")
	}
	for key, attr := range d.Organization {
		if _, ok := organizationAttributes[attr]; !ok {
			return fmt.Errorf("organization field %q maps to unknown attribute %q", key, attr)
		}
	}
	for key, attr := range d.Person {
		if _, ok := personAttributes[attr]; !ok {
			return fmt.Errorf("person field %q maps to unknown attribute %q", key, attr)
		}
	}
	return nil
}

func (d Dictionaries) clone() Dictionaries {
	return Dictionaries{
		Organization: maps.Clone(d.Organization),
		Person:       maps.Clone(d.Person),
	}
}
