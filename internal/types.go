package internal

type SourceID string

const (
	SourceQLDProhibited SourceID = "qld_prohibited"
	SourceQLDRestricted SourceID = "qld_restricted"
	SourceNSW           SourceID = "nsw"
	SourceNTPDF         SourceID = "nt_pdf"
	SourceVICPDF        SourceID = "vic_pdf"
	SourceSAPDF         SourceID = "sa_pdf"
	SourceWACSV         SourceID = "wa_csv"
	SourceTASTable      SourceID = "tas_table"
	SourceWeedScan      SourceID = "weedscan"
	SourceWONS          SourceID = "wons_wikipedia"
	SourceBCCCSV        SourceID = "bcc_csv"
	SourceLucidKey      SourceID = "lucid_key"
)

// RawName is one candidate name string as emitted by a source adapter,
// before any deduplication or validation.
type RawName struct {
	Source SourceID
	Name   string
}

// Record is a single result returned by the nomenclature authority for a
// genus+species query. Accepted is nil when the authority omitted the field.
type Record struct {
	Rank      string
	Accepted  *bool
	Name      string
	SynonymOf *Record
}

type OutcomeStatus string

type OutcomeReason string

const (
	StatusAccepted  OutcomeStatus = "ACCEPTED"
	StatusSynonym   OutcomeStatus = "SYNONYM"
	StatusUnmatched OutcomeStatus = "UNMATCHED"

	ReasonDirect     OutcomeReason = "DIRECT"
	ReasonSynonymOf  OutcomeReason = "SYNONYM_OF"
	ReasonMalformed  OutcomeReason = "MALFORMED"
	ReasonNoMatch    OutcomeReason = "NO_MATCH"
	ReasonQueryError OutcomeReason = "QUERY_ERROR"
)

// Outcome is the terminal classification of one candidate. AcceptedName is
// empty iff Status is StatusUnmatched; when set it is taken verbatim from an
// authority record, never from the candidate itself.
type Outcome struct {
	Status       OutcomeStatus
	AcceptedName string
	Confidence   float64
	Reason       OutcomeReason
}

// ReportRow is one line of the per-candidate validation report.
type ReportRow struct {
	Index        int
	Candidate    string
	Status       string
	Reason       string
	AcceptedName string
	Confidence   float64
}
