package messaging

// NATS subjects carried on the airdrop events stream
const (
	// SubjectPrefix is the root of every interaction subject
	SubjectPrefix = "interactions"

	// SubjectContract carries normalized contract interactions
	SubjectContract = SubjectPrefix + ".contract"

	// SubjectSocial carries normalized X account interactions
	SubjectSocial = SubjectPrefix + ".x"

	// SubjectWildcard subscribes to every interaction subject
	SubjectWildcard = SubjectPrefix + ".>"
)
