package structures

import (
	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/outputproc"
)

const confirmedConfidenceFloor = 0.75

// BuildVerification assembles the verification structure: the claim under
// test, its supporting evidence, a computed verdict with confidence, and a
// conclusion reconciled against that verdict (§4.10).
func BuildVerification(in BuildInput) (domain.StructuredResponse, error) {
	verdict, confidence := computeVerdict(in)
	conclusion := outputproc.ReconcileConclusion(in.Output.Conclusion, string(verdict))

	evidence := make([]string, 0, len(in.Results))
	for _, r := range in.Results {
		evidence = append(evidence, r.Content)
	}

	fields := map[string]any{
		"claim":      in.Understanding.Understood,
		"evidence":   evidence,
		"verdict":    verdict,
		"confidence": confidence,
	}

	return domain.StructuredResponse{
		StructureType: string(domain.QueryTypeVerification),
		Thinking:      in.Output.Thinking,
		DirectAnswer:  in.Output.DirectAnswer,
		Analysis:      in.Output.Analysis,
		Conclusion:    conclusion,
		Fields:        fields,
	}, nil
}

func computeVerdict(in BuildInput) (domain.Verdict, float64) {
	if len(in.Results) == 0 {
		return domain.VerdictNotFound, 0
	}
	v := in.Verification
	switch {
	case v.Combined >= confirmedConfidenceFloor && len(v.UngroundedClaims) == 0:
		return domain.VerdictConfirmed, v.Combined
	case len(v.VerifiedClaims) > 0 && len(v.UngroundedClaims) > 0:
		return domain.VerdictPartial, v.Combined
	case len(v.UngroundedClaims) > 0:
		return domain.VerdictContradicted, v.Combined
	case len(v.VerifiedClaims) > 0:
		return domain.VerdictConfirmed, v.Combined
	default:
		return domain.VerdictNotFound, v.Combined
	}
}
