package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jn-rp/vassal/internal/queue"
)

// formValues collects every "<prefix>.N" form value in index order, the
// SQS convention for repeated parameters (spec.md §6: "AttributeName.N").
func formValues(r *http.Request, prefix string) []string {
	var out []string
	for i := 1; ; i++ {
		v := r.FormValue(fmt.Sprintf("%s.%d", prefix, i))
		if v == "" {
			break
		}
		out = append(out, v)
	}
	return out
}

// filterAttributes applies the requested_attributes filtering from
// spec.md §4.5 (empty list or "All" returns everything).
func filterAttributes(all map[string]string, requested []string) map[string]string {
	if len(requested) == 0 {
		return all
	}
	for _, name := range requested {
		if name == "All" {
			return all
		}
	}
	out := make(map[string]string, len(requested))
	for _, name := range requested {
		if v, ok := all[name]; ok {
			out[name] = v
		}
	}
	return out
}

// parseQueueAttributes reads CreateQueue's "Attribute.N.Name"/
// "Attribute.N.Value" pairs into a QueueConfig (spec.md §6). An unrecognized
// attribute name, or a value that does not parse, fails the whole request
// with InvalidParameterValue.
func parseQueueAttributes(r *http.Request, prefix string) (queue.QueueConfig, *actionError) {
	var cfg queue.QueueConfig
	for i := 1; ; i++ {
		name := r.FormValue(fmt.Sprintf("%s.%d.Name", prefix, i))
		if name == "" {
			break
		}
		value := r.FormValue(fmt.Sprintf("%s.%d.Value", prefix, i))

		if err := applyAttribute(&cfg, name, value); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// parseQueueAttributeUpdates reads SetQueueAttributes' same Attribute.N
// pairs but also reports which fields were actually present, so the
// Coordinator only overlays fields the caller supplied (SPEC_FULL.md §5).
func parseQueueAttributeUpdates(r *http.Request) (queue.QueueConfig, map[string]bool, *actionError) {
	var cfg queue.QueueConfig
	set := make(map[string]bool)
	for i := 1; ; i++ {
		name := r.FormValue(fmt.Sprintf("Attribute.%d.Name", i))
		if name == "" {
			break
		}
		value := r.FormValue(fmt.Sprintf("Attribute.%d.Value", i))

		field, err := attributeField(name)
		if err != nil {
			return cfg, nil, err
		}
		if applyErr := applyAttribute(&cfg, name, value); applyErr != nil {
			return cfg, nil, applyErr
		}
		set[field] = true
	}
	return cfg, set, nil
}

// attributeField maps an SQS attribute name to the QueueConfig field it
// mutates, rejecting attributes the data model does not expose as
// settable (spec.md §3, SPEC_FULL.md §5).
func attributeField(name string) (string, *actionError) {
	switch name {
	case "DelaySeconds":
		return "DelayMs", nil
	case "MaximumMessageSize":
		return "MaxMessageBytes", nil
	case "MessageRetentionPeriod":
		return "RetentionSecs", nil
	case "ReceiveMessageWaitTimeSeconds":
		return "RecvWaitTimeMs", nil
	case "VisibilityTimeout":
		return "VisibilityTimeoutMs", nil
	case "MaxRetries":
		return "MaxRetries", nil
	case "RedrivePolicy":
		return "DeadLetterQueue", nil
	default:
		return "", invalidParameterValue("unrecognized queue attribute: " + name)
	}
}

func applyAttribute(cfg *queue.QueueConfig, name, value string) *actionError {
	switch name {
	case "DelaySeconds":
		secs, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return invalidParameterValue("DelaySeconds must be an integer")
		}
		cfg.DelayMs = secs * 1000
	case "MaximumMessageSize":
		n, err := strconv.Atoi(value)
		if err != nil {
			return invalidParameterValue("MaximumMessageSize must be an integer")
		}
		cfg.MaxMessageBytes = n
	case "MessageRetentionPeriod":
		secs, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return invalidParameterValue("MessageRetentionPeriod must be an integer")
		}
		cfg.RetentionSecs = secs
	case "ReceiveMessageWaitTimeSeconds":
		secs, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return invalidParameterValue("ReceiveMessageWaitTimeSeconds must be an integer")
		}
		cfg.RecvWaitTimeMs = secs * 1000
	case "VisibilityTimeout":
		secs, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return invalidParameterValue("VisibilityTimeout must be an integer")
		}
		cfg.VisibilityTimeoutMs = secs * 1000
	case "MaxRetries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return invalidParameterValue("MaxRetries must be an integer")
		}
		cfg.MaxRetries = &n
	case "RedrivePolicy":
		cfg.DeadLetterQueue = value
	default:
		return invalidParameterValue("unrecognized queue attribute: " + name)
	}
	return nil
}
