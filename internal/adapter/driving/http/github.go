package httphandler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/hookboard/internal/application"
	"github.com/ericfisherdev/hookboard/internal/domain/model"
)

// githubEventOutcome classifies a native GitHub delivery after parsing.
type githubEventOutcome int

const (
	githubEventNormalized githubEventOutcome = iota
	githubEventPing
	githubEventIgnored
)

// normalizeGitHubEvent maps a native GitHub webhook payload onto the
// simplified event model. The delivery ID becomes the request_id, so GitHub
// redeliveries are suppressed by the same unique index as any other
// duplicate. A closed-and-merged pull_request is reported as a merge event.
func normalizeGitHubEvent(eventType, deliveryID string, body []byte) (application.IngestInput, githubEventOutcome, error) {
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		return application.IngestInput{}, githubEventIgnored, err
	}

	in := application.IngestInput{RequestID: deliveryID}

	switch e := payload.(type) {
	case *github.PingEvent:
		return application.IngestInput{}, githubEventPing, nil

	case *github.PushEvent:
		in.EventType = string(model.EventTypePush)
		in.Author = e.GetSender().GetLogin()
		if in.Author == "" {
			in.Author = e.GetPusher().GetName()
		}
		in.Branch = strings.TrimPrefix(e.GetRef(), "refs/heads/")
		in.Timestamp = pickTimestamp(e.GetHeadCommit().GetTimestamp().Time)

	case *github.PullRequestEvent:
		pr := e.GetPullRequest()
		in.Author = e.GetSender().GetLogin()
		in.Action = e.GetAction()
		in.FromBranch = pr.GetHead().GetRef()
		in.ToBranch = pr.GetBase().GetRef()

		if e.GetAction() == "closed" && pr.GetMerged() {
			in.EventType = string(model.EventTypeMerge)
			in.Timestamp = pickTimestamp(pr.GetMergedAt().Time)
		} else {
			in.EventType = string(model.EventTypePullRequest)
			in.Timestamp = pickTimestamp(pr.GetUpdatedAt().Time)
		}

	default:
		return application.IngestInput{}, githubEventIgnored, nil
	}

	return in, githubEventNormalized, nil
}

// pickTimestamp formats t for ingest, falling back to now when the payload
// carried no usable time.
func pickTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.UTC().Format(time.RFC3339)
}

// verifySignature checks the X-Hub-Signature-256 HMAC over the payload.
func verifySignature(payload []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
