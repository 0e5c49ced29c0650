package discipline

// ── Sections ──

// SectionID identifies one of the ordered form sections.
type SectionID string

const (
	SectionBasic       SectionID = "basic"
	SectionSuspension  SectionID = "suspension"
	SectionProsecution SectionID = "prosecution"
	SectionWSD         SectionID = "wsd"
	SectionInquiry     SectionID = "inquiry"
	SectionWR          SectionID = "wr"
	SectionRemarks     SectionID = "remarks"
)

// Section describes one form section.
type Section struct {
	ID    SectionID `json:"id"`
	Title string    `json:"title"`
}

// Sections lists every section in display order.
var Sections = []Section{
	{ID: SectionBasic, Title: "Basic Information"},
	{ID: SectionSuspension, Title: "Suspension / Trap"},
	{ID: SectionProsecution, Title: "Prosecution & Charges"},
	{ID: SectionWSD, Title: "Written Statement of Defence"},
	{ID: SectionInquiry, Title: "Inquiry Report"},
	{ID: SectionWR, Title: "Written Representation"},
	{ID: SectionRemarks, Title: "Remarks"},
}

func knownSection(id SectionID) bool {
	for _, s := range Sections {
		if s.ID == id {
			return true
		}
	}
	return false
}

// ── Field kinds ──

// Kind is the data kind of a field.
type Kind string

const (
	KindText    Kind = "text"
	KindDate    Kind = "date"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
)

// DateLayout is the wire format of every date field.
const DateLayout = "2006-01-02"

// FieldDef declares one field of a case record.
type FieldDef struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Kind    Kind      `json:"kind"`
	Section SectionID `json:"section"`
	// Options names a catalog list for enum fields.
	Options string `json:"options,omitempty"`
	// OpenList marks enum fields whose catalog list is a suggestion only.
	OpenList bool `json:"openList,omitempty"`
	// Alias is a synonym key kept in sync with Key on every write.
	Alias   string `json:"alias,omitempty"`
	Default any    `json:"default"`
}

// Zero is the empty value a field is reset to when its gate closes.
func (f FieldDef) Zero() any {
	if f.Kind == KindBoolean {
		return false
	}
	return ""
}

// Initial is the value a new record gets when the field is absent.
func (f FieldDef) Initial() any {
	if f.Default != nil {
		return f.Default
	}
	return f.Zero()
}

// ── Canonical keys referenced by rules ──

const (
	FieldFileNumber        = "fileNumber"
	FieldEOfficeNumber     = "eOfficeNumber"
	FieldEmployeeID        = "employeeId"
	FieldName              = "name"
	FieldEmployeeName      = "employeeName"
	FieldDesignation       = "designationWhenChargesIssued"
	FieldULB               = "nameOfULB"
	FieldCategory          = "categoryOfCase"
	FieldSubCategory       = "subCategoryOfCase"
	FieldCaseType          = "caseType"
	FieldCaseTypeConfirmed = "caseTypeConfirmed"
	FieldIncidentDate      = "incidentDate"
	FieldDateOfIncident    = "dateOfIncident"
	FieldDescription       = "description"
	FieldSeverity          = "severity"
	FieldStatus            = "status"

	FieldChargesIssued          = "chargesIssued"
	FieldWSDOrServedCopy        = "wsdOrServedCopy"
	FieldFurtherActionWSD       = "furtherActionWSD"
	FieldInquiryReportSubmitted = "inquiryReportSubmitted"
	FieldFurtherActionInquiry   = "furtherActionInquiry"
	FieldInquiryDisagreedAction = "inquiryDisagreedAction"
)

func textField(key, label string, section SectionID) FieldDef {
	return FieldDef{Key: key, Label: label, Kind: KindText, Section: section}
}

func dateField(key, label string, section SectionID) FieldDef {
	return FieldDef{Key: key, Label: label, Kind: KindDate, Section: section}
}

func boolField(key, label string, section SectionID) FieldDef {
	return FieldDef{Key: key, Label: label, Kind: KindBoolean, Section: section}
}

func enumField(key, label string, section SectionID, options string) FieldDef {
	return FieldDef{Key: key, Label: label, Kind: KindEnum, Section: section, Options: options}
}

func yesNoField(key, label string, section SectionID) FieldDef {
	return enumField(key, label, section, ListYesNo)
}

// DefaultFields returns the declared case record fields in form order.
func DefaultFields() []FieldDef {
	name := textField(FieldName, "Name of the Employee", SectionBasic)
	name.Alias = FieldEmployeeName

	designation := enumField(FieldDesignation, "Designation (when charges issued)", SectionBasic, ListDesignations)
	designation.OpenList = true
	present := enumField("presentDesignation", "Present Designation", SectionBasic, ListDesignations)
	present.OpenList = true
	ulb := enumField(FieldULB, "Name of the ULB", SectionBasic, ListULBs)
	ulb.OpenList = true

	sub := enumField(FieldSubCategory, "Sub-Category of Case", SectionBasic, ListSubCategories)
	sub.Alias = FieldCaseType

	incident := dateField(FieldIncidentDate, "Date of Incident", SectionBasic)
	incident.Alias = FieldDateOfIncident

	severity := enumField(FieldSeverity, "Severity", SectionRemarks, ListSeverities)
	severity.Default = "Medium"
	status := enumField(FieldStatus, "Status", SectionRemarks, ListStatuses)
	status.Default = "Pending"

	return []FieldDef{
		// basic
		textField(FieldFileNumber, "File Number", SectionBasic),
		textField(FieldEOfficeNumber, "e-Office Number", SectionBasic),
		textField(FieldEmployeeID, "Employee ID", SectionBasic),
		name,
		designation,
		present,
		ulb,
		enumField("employmentStatus", "Employment Status", SectionBasic, ListEmploymentStatuses),
		boolField("isRetired", "Retired", SectionBasic),
		dateField("retirementDate", "Date of Retirement", SectionBasic),
		enumField(FieldCategory, "Category of Case", SectionBasic, ListCategories),
		sub,
		boolField(FieldCaseTypeConfirmed, "Case Type Confirmed", SectionBasic),
		incident,

		// suspension / trap
		dateField("trapDate", "Date of Trap", SectionSuspension),
		textField("trapAmount", "Trap Amount", SectionSuspension),
		textField("assetsValue", "Value of Disproportionate Assets", SectionSuspension),
		yesNoField("suspended", "Whether Suspended", SectionSuspension),
		textField("suspensionOrderNumber", "Suspension Order Number", SectionSuspension),
		dateField("suspensionDate", "Date of Suspension", SectionSuspension),
		yesNoField("reinitiated", "Whether Reinitiated into Service", SectionSuspension),
		textField("reinitiationOrderNumber", "Reinitiation Order Number", SectionSuspension),
		dateField("reinitiationDate", "Date of Reinitiation", SectionSuspension),
		yesNoField("regularized", "Whether Suspension Period Regularized", SectionSuspension),
		textField("regularizationOrderNumber", "Regularization Order Number", SectionSuspension),
		dateField("regularizationDate", "Date of Regularization", SectionSuspension),
		textField("suspensionPeriodTreatedAs", "Suspension Period Treated As", SectionSuspension),

		// prosecution & charges
		yesNoField("criminalCaseRegistered", "Whether Criminal Case Registered", SectionProsecution),
		textField("firNumber", "FIR Number", SectionProsecution),
		dateField("firDate", "FIR Date", SectionProsecution),
		textField("policeStation", "Police Station", SectionProsecution),
		textField("criminalCourt", "Court", SectionProsecution),
		textField("criminalCaseNumber", "Criminal Case Number", SectionProsecution),
		enumField("criminalCaseStatus", "Criminal Case Status", SectionProsecution, ListCriminalCaseStatuses),
		yesNoField("prosecutionSanctioned", "Whether Prosecution Sanctioned", SectionProsecution),
		textField("prosecutionSanctionOrderNumber", "Prosecution Sanction Order Number", SectionProsecution),
		dateField("prosecutionSanctionDate", "Prosecution Sanction Date", SectionProsecution),
		textField("prosecutionSanctionedBy", "Prosecution Sanctioned By", SectionProsecution),
		yesNoField(FieldChargesIssued, "Whether Charges Issued", SectionProsecution),
		textField("chargeMemoNumber", "Charge Memo Number", SectionProsecution),
		dateField("chargeMemoDate", "Charge Memo Date", SectionProsecution),
		textField("chargesIssuedBy", "Charges Issued By", SectionProsecution),
		textField("articlesOfCharge", "Articles of Charge", SectionProsecution),

		// WSD
		yesNoField(FieldWSDOrServedCopy, "WSD Received / Served Copy", SectionWSD),
		textField("wsdIssuedBy", "WSD Issued By", SectionWSD),
		textField("wsdNumber", "WSD Number", SectionWSD),
		dateField("wsdDate", "WSD Date", SectionWSD),
		enumField(FieldFurtherActionWSD, "Further Action on WSD", SectionWSD, ListWSDActions),
		textField("concludeText", "Conclusion Details", SectionWSD),
		textField("othersTextWSD", "Other Action Details", SectionWSD),
		yesNoField("ioAppointed", "Whether Inquiry Officer Appointed", SectionWSD),
		textField("ioName", "Inquiry Officer Name", SectionWSD),
		textField("ioDesignation", "Inquiry Officer Designation", SectionWSD),
		textField("ioOrderNumber", "IO Appointment Order Number", SectionWSD),
		dateField("ioAppointmentDate", "IO Appointment Date", SectionWSD),
		yesNoField("poAppointed", "Whether Presenting Officer Appointed", SectionWSD),
		textField("poName", "Presenting Officer Name", SectionWSD),
		textField("poDesignation", "Presenting Officer Designation", SectionWSD),
		textField("poOrderNumber", "PO Appointment Order Number", SectionWSD),
		dateField("poAppointmentDate", "PO Appointment Date", SectionWSD),

		// inquiry report
		yesNoField(FieldInquiryReportSubmitted, "Whether Inquiry Report Submitted", SectionInquiry),
		textField("inquiryReportNumber", "Inquiry Report Number", SectionInquiry),
		dateField("inquiryReportDate", "Inquiry Report Date", SectionInquiry),
		enumField("chargesProved", "Findings on Charges", SectionInquiry, ListChargesProved),
		enumField(FieldFurtherActionInquiry, "Further Action on Inquiry Report", SectionInquiry, ListInquiryActions),
		textField("disagreementReasons", "Reasons for Disagreement", SectionInquiry),
		enumField(FieldInquiryDisagreedAction, "Action on Disagreement", SectionInquiry, ListDisagreedActions),
		textField("disagreementNoteNumber", "Disagreement Note Number", SectionInquiry),
		dateField("disagreementNoteDate", "Disagreement Note Date", SectionInquiry),
		textField("disagreedOthersText", "Other Action Details", SectionInquiry),

		// WR
		yesNoField("wrSubmitted", "Whether Written Representation Submitted", SectionWR),
		textField("wrNumber", "WR Number", SectionWR),
		dateField("wrDate", "WR Date", SectionWR),
		yesNoField("punishmentAwarded", "Whether Punishment Awarded", SectionWR),
		enumField("punishmentType", "Punishment", SectionWR, ListPunishments),
		textField("punishmentOrderNumber", "Punishment Order Number", SectionWR),
		dateField("punishmentOrderDate", "Punishment Order Date", SectionWR),
		textField("punishmentDetails", "Punishment Details", SectionWR),

		// remarks
		textField(FieldDescription, "Description", SectionRemarks),
		textField("actionTaken", "Action Taken", SectionRemarks),
		textField("remarks", "Remarks", SectionRemarks),
		textField("notes", "Notes", SectionRemarks),
		severity,
		status,
	}
}

// ── Schema ──

// Schema indexes field definitions and their aliases.
type Schema struct {
	fields  []FieldDef
	index   map[string]int
	aliases map[string]string // alias -> canonical
}

// NewSchema builds a schema and rejects duplicate keys, unknown sections
// and colliding aliases.
func NewSchema(fields []FieldDef) (*Schema, error) {
	s := &Schema{
		fields:  make([]FieldDef, 0, len(fields)),
		index:   make(map[string]int, len(fields)),
		aliases: make(map[string]string),
	}
	for _, f := range fields {
		if f.Key == "" {
			return nil, configErrorf("field with empty key")
		}
		if _, dup := s.index[f.Key]; dup {
			return nil, configErrorf("field %q declared twice", f.Key)
		}
		if !knownSection(f.Section) {
			return nil, configErrorf("field %q has unknown section %q", f.Key, f.Section)
		}
		if f.Kind == KindEnum && f.Options == "" {
			return nil, configErrorf("enum field %q has no options list", f.Key)
		}
		s.index[f.Key] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	for _, f := range s.fields {
		if f.Alias == "" {
			continue
		}
		if _, clash := s.index[f.Alias]; clash {
			return nil, configErrorf("alias %q of %q collides with a field", f.Alias, f.Key)
		}
		if other, clash := s.aliases[f.Alias]; clash {
			return nil, configErrorf("alias %q claimed by %q and %q", f.Alias, other, f.Key)
		}
		s.aliases[f.Alias] = f.Key
	}
	return s, nil
}

// Fields returns the definitions in declared order.
func (s *Schema) Fields() []FieldDef {
	out := make([]FieldDef, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks a definition up by canonical key or alias.
func (s *Schema) Field(key string) (FieldDef, bool) {
	if canonical, ok := s.aliases[key]; ok {
		key = canonical
	}
	i, ok := s.index[key]
	if !ok {
		return FieldDef{}, false
	}
	return s.fields[i], true
}

// Canonical maps an alias to its canonical key. Other keys are returned as is.
func (s *Schema) Canonical(key string) string {
	if canonical, ok := s.aliases[key]; ok {
		return canonical
	}
	return key
}

// Order is the declared position of key, or -1 when the key is unknown.
func (s *Schema) Order(key string) int {
	if i, ok := s.index[s.Canonical(key)]; ok {
		return i
	}
	return -1
}

// SectionFields returns the fields of one section in declared order.
func (s *Schema) SectionFields(id SectionID) []FieldDef {
	var out []FieldDef
	for _, f := range s.fields {
		if f.Section == id {
			out = append(out, f)
		}
	}
	return out
}
