package contest

import "errors"

var (
	errNilState  = errors.New("contest engine: state not configured")
	errNilLedger = errors.New("contest engine: ledger not configured")

	// Setup errors.
	ErrAlreadyInitialized = errors.New("contest engine: registry already initialized")
	ErrNotInitialized     = errors.New("contest engine: registry not initialized")
	ErrInvalidSchedule    = errors.New("contest engine: invalid schedule")
	ErrInvalidPercentage  = errors.New("contest engine: artist share must be between 0 and 100")
	ErrInvalidMetadata    = errors.New("contest engine: invalid contest metadata")
	ErrInsufficientFunds  = errors.New("contest engine: insufficient funds for prize")

	// Uniqueness violations.
	ErrDuplicateSubmission = errors.New("contest engine: artist already submitted to this contest")
	ErrDuplicateVote       = errors.New("contest engine: voter already voted in this contest")
	ErrAlreadyClaimed      = errors.New("contest engine: already claimed")

	// Eligibility violations.
	ErrInvalidArtwork   = errors.New("contest engine: artwork id out of range")
	ErrInvalidNFT       = errors.New("contest engine: submission must escrow exactly one indivisible unit")
	ErrNotArtist        = errors.New("contest engine: caller is not the artwork's artist")
	ErrNotVoter         = errors.New("contest engine: caller has no vote in this contest")
	ErrNotOwner         = errors.New("contest engine: caller is not the contest owner")
	ErrNotWinner        = errors.New("contest engine: artwork is not the winner")
	ErrArtworkMismatch  = errors.New("contest engine: artwork does not match the proof record")
	ErrSubmissionClosed = errors.New("contest engine: submission window is not open")
	ErrVotingClosed     = errors.New("contest engine: voting window is not open")
	ErrVotingNotClosed  = errors.New("contest engine: voting window has not closed")
	ErrVaultAuthority   = errors.New("contest engine: vault authority mismatch")

	// Arithmetic errors.
	ErrArithmeticOverflow = errors.New("contest engine: arithmetic overflow")
	ErrNoVotesForWinner   = errors.New("contest engine: winning artwork has no votes")
	ErrNoSubmissions      = errors.New("contest engine: contest has no submissions")

	// Lookup errors.
	ErrContestNotFound = errors.New("contest engine: contest not found")
	ErrArtworkNotFound = errors.New("contest engine: artwork not found")
	ErrVoteNotFound    = errors.New("contest engine: vote not found")
	ErrVaultNotFound   = errors.New("contest engine: vault not found")
)

// ErrorKind groups engine errors into the reporting taxonomy.
type ErrorKind string

const (
	KindNone        ErrorKind = ""
	KindSetup       ErrorKind = "setup"
	KindUniqueness  ErrorKind = "uniqueness"
	KindEligibility ErrorKind = "eligibility"
	KindArithmetic  ErrorKind = "arithmetic"
	KindNotFound    ErrorKind = "not_found"
	KindInternal    ErrorKind = "internal"
)

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrAlreadyInitialized, KindSetup},
	{ErrNotInitialized, KindSetup},
	{ErrInvalidSchedule, KindSetup},
	{ErrInvalidPercentage, KindSetup},
	{ErrInvalidMetadata, KindSetup},
	{ErrInsufficientFunds, KindSetup},
	{ErrDuplicateSubmission, KindUniqueness},
	{ErrDuplicateVote, KindUniqueness},
	{ErrAlreadyClaimed, KindUniqueness},
	{ErrInvalidArtwork, KindEligibility},
	{ErrInvalidNFT, KindEligibility},
	{ErrNotArtist, KindEligibility},
	{ErrNotVoter, KindEligibility},
	{ErrNotOwner, KindEligibility},
	{ErrNotWinner, KindEligibility},
	{ErrArtworkMismatch, KindEligibility},
	{ErrSubmissionClosed, KindEligibility},
	{ErrVotingClosed, KindEligibility},
	{ErrVotingNotClosed, KindEligibility},
	{ErrArithmeticOverflow, KindArithmetic},
	{ErrNoVotesForWinner, KindArithmetic},
	{ErrNoSubmissions, KindArithmetic},
	{ErrContestNotFound, KindNotFound},
	{ErrArtworkNotFound, KindNotFound},
	{ErrVoteNotFound, KindNotFound},
	{ErrVaultNotFound, KindNotFound},
}

// Kind classifies err. Errors not produced by the engine are internal.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, entry := range errorKinds {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	return KindInternal
}
