package audit

import "strings"

// ActionResource holds action and resource derived from a gRPC full method name.
type ActionResource struct {
	Action   string
	Resource string
}

// Ballot methods whose audit action names the outcome rather than the verb.
var methodOverrides = map[string]ActionResource{
	"/ballot.v1.BallotService/SubmitDirectVote":     {Action: "vote_submitted", Resource: "vote"},
	"/ballot.v1.BallotService/SubmitVerifiedVote":   {Action: "vote_verified", Resource: "vote"},
	"/ballot.v1.BallotService/RetryRecording":       {Action: "vote_retried", Resource: "vote"},
	"/ballot.v1.BallotService/UpdateProposalStatus": {Action: "status_changed", Resource: "proposal"},
}

// ParseFullMethod returns action and resource for a gRPC full method (e.g. /ballot.v1.BallotService/GetTallies).
// Action is a verb (get, list, check, update) or a lowercase method name; resource is the service name
// without its Service suffix.
func ParseFullMethod(fullMethod string) ActionResource {
	if ar, ok := methodOverrides[fullMethod]; ok {
		return ar
	}
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	method := fullMethod[slash+1:]
	pkgService := fullMethod[:slash]
	dot := strings.LastIndex(pkgService, ".")
	if dot < 0 {
		return ActionResource{Action: strings.ToLower(method), Resource: "unknown"}
	}
	return ActionResource{Action: methodToAction(method), Resource: serviceToResource(pkgService[dot+1:])}
}

func serviceToResource(serviceName string) string {
	s := strings.TrimSuffix(serviceName, "Service")
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func methodToAction(method string) string {
	for _, prefix := range []string{"Get", "List", "Check", "Create", "Update", "Submit", "Retry"} {
		if strings.HasPrefix(method, prefix) && method != prefix {
			return strings.ToLower(prefix)
		}
	}
	return strings.ToLower(method)
}
