package mqtt

import (
	"fmt"
	"strings"
)

// Topics builds the topic tree of one accessory:
//
//	<prefix>/<device>/state          retained JSON snapshot
//	<prefix>/<device>/availability   retained "online" | "offline"
//	<prefix>/<device>/set/<name>     JSON value written to characteristic <name>
type Topics struct {
	Prefix string
	Device string
}

// NewTopics derives the device segment from the accessory name.
func NewTopics(prefix, name string) Topics {
	return Topics{Prefix: strings.Trim(prefix, "/"), Device: DeviceID(name)}
}

func (t Topics) base() string {
	return fmt.Sprintf("%s/%s", t.Prefix, t.Device)
}

// State returns the snapshot topic, e.g. onelife/living-room/state.
func (t Topics) State() string { return t.base() + "/state" }

// Availability returns the online/offline topic.
func (t Topics) Availability() string { return t.base() + "/availability" }

// Set returns the write topic of one characteristic.
func (t Topics) Set(name string) string { return t.base() + "/set/" + name }

// AllSets matches every write topic.
func (t Topics) AllSets() string { return t.base() + "/set/+" }

// CharacteristicFromTopic extracts <name> from a write topic of this device.
func (t Topics) CharacteristicFromTopic(topic string) (string, bool) {
	prefix := t.base() + "/set/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(topic, prefix)
	if name == "" || strings.ContainsAny(name, "/+#") {
		return "", false
	}
	return name, true
}

// DeviceID lowercases name and replaces anything outside [a-z0-9] with '-'.
func DeviceID(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	id := strings.TrimSuffix(b.String(), "-")
	if id == "" {
		return "purifier"
	}
	return id
}

// validTopic rejects empty topics and wildcards in publish topics.
func validTopic(topic string) bool {
	return topic != "" && !strings.ContainsAny(topic, "+#")
}
