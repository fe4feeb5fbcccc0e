package messaging

import "strings"

const DefaultTopic = "crm-domain-events"

type route struct {
	match string
	topic string
}

// Router maps an event kind to its destination topic. Pure and total: a kind
// matching no entry goes to the default topic.
type Router struct {
	defaultTopic string
	routes       []route
}

// NewRouter builds the static routing table. Matching is by substring, first
// match wins, in this fixed order. "CustomerContactMerged" would therefore
// land on customers-events; keep kind names single-domain.
func NewRouter(defaultTopic string) *Router {
	if defaultTopic == "" {
		defaultTopic = DefaultTopic
	}
	return &Router{
		defaultTopic: defaultTopic,
		routes: []route{
			{match: "Customer", topic: "customers-events"},
			{match: "Contact", topic: "contacts-events"},
			{match: "Task", topic: "tasks-events"},
			{match: "Note", topic: "notes-events"},
		},
	}
}

func (r *Router) TopicFor(eventKind string) string {
	for _, rt := range r.routes {
		if strings.Contains(eventKind, rt.match) {
			return rt.topic
		}
	}
	return r.defaultTopic
}
