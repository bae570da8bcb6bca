package messaging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pixil98/go-outbreak/internal/game"
)

// lineWidth is the column players' terminals are assumed to have.
const lineWidth = 80

// Sink is where rendered notifications go. The embedded NatsServer satisfies
// it; tests swap in a recorder.
type Sink interface {
	Publish(subject string, data []byte) error
}

// eventTemplates renders each event kind into the line a player sees.
var eventTemplates = map[string]string{
	"day_phase_changed":      "{{ if eq (toString .Phase) \"night\" }}Night falls. The dead get restless.{{ else }}The sun rises. Move while it lasts.{{ end }}",
	"zombies_spawned":        "Groaning echoes through {{ .Region }}: {{ .Count }} more zombies ({{ .Total }} roaming).",
	"encounter_opened":       "Something shuffles on floor {{ .Floor }} of {{ .Building }}. Sneak or attack, quickly.",
	"floor_cleared":          "Floor {{ .Floor }} of {{ .Building }} is clear.{{ if .Loot }} You found{{ range $item, $n := .Loot }} {{ $n }}x {{ $item }}{{ end }}.{{ end }}",
	"player_fled":            "You slip away from {{ .Building }} with your life and nothing else.",
	"player_down":            "You went down in {{ .Region }} ({{ .Cause }}).",
	"offline_mode_resolved":  "{{ if .Success }}Your scavenging run paid off:{{ range $item, $n := .Loot }} {{ $n }}x {{ $item }}{{ end }}.{{ else }}Your scavenging run went wrong out there.{{ end }}",
	"ambush_triggered":       "{{ if .Won }}Your ambush in {{ .Region }} caught {{ .Target }} cold.{{ else }}Your ambush in {{ .Region }} failed.{{ end }}",
	"radio_broadcast":        "Radio {{ .Freq }} - anon@{{ .Freq }}: {{ .Message }}",
	"construction_completed": "Your {{ .Structure | replace \"-\" \" \" | title }} in {{ .Region }} is finished.",
	"vehicle_arrived":        "{{ .Vehicle }} rolls into {{ .Region }}.",
}

// EventPublisher renders world events and fans them out: the raw event as
// JSON on events.<kind> for any listener, and a rendered line on the owning
// player's channel. Delivery failures are logged, never surfaced, so the
// simulation cannot stall on a slow consumer.
type EventPublisher struct {
	sink      Sink
	templates map[string]*template.Template
}

func NewEventPublisher(sink Sink) (*EventPublisher, error) {
	p := &EventPublisher{
		sink:      sink,
		templates: map[string]*template.Template{},
	}
	for kind, text := range eventTemplates {
		tmpl, err := template.New(kind).Funcs(sprig.TxtFuncMap()).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", kind, err)
		}
		p.templates[kind] = tmpl
	}
	return p, nil
}

func (p *EventPublisher) Publish(ev game.Event) {
	kind := ev.EventKind()

	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("encoding event", "kind", kind, "error", err)
		return
	}
	if err := p.sink.Publish("events."+kind, data); err != nil {
		slog.Error("publishing event", "kind", kind, "error", err)
	}

	line, ok := p.render(kind, ev)
	if !ok {
		return
	}
	for _, playerID := range recipients(ev) {
		if err := p.sink.Publish("player-"+playerID, []byte(line)); err != nil {
			slog.Error("notifying player", "player", playerID, "kind", kind, "error", err)
		}
	}
}

func (p *EventPublisher) render(kind string, ev game.Event) (string, bool) {
	tmpl, ok := p.templates[kind]
	if !ok {
		return "", false
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ev); err != nil {
		slog.Error("rendering event", "kind", kind, "error", err)
		return "", false
	}
	return wordwrap.String(buf.String(), lineWidth), true
}

// recipients picks the players who get the rendered line. World-scoped
// events have none; listeners pick those up from the events subject.
func recipients(ev game.Event) []string {
	switch e := ev.(type) {
	case game.EncounterOpened:
		return []string{e.Player}
	case game.FloorCleared:
		return []string{e.Player}
	case game.PlayerFled:
		return []string{e.Player}
	case game.PlayerDown:
		return []string{e.Player}
	case game.OfflineModeResolved:
		return []string{e.Player}
	case game.AmbushTriggered:
		return []string{e.Ambusher, e.Target}
	case game.RadioBroadcast:
		return e.Listeners
	case game.ConstructionCompleted:
		return []string{e.Owner}
	case game.VehicleArrived:
		return []string{e.Owner}
	}
	return nil
}
