// Package panel renders the records a subject holds, grouped by the PDS that
// holds them.
package panel

import (
	"strings"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/embark/internal/state"
)

// DefaultHeading is the label rendered above the groups.
const DefaultHeading = "Subject Records"

// DefaultLinkBanner is the banner text shown in link mode.
const DefaultLinkBanner = "Link mode: select a record to link it to the active subject"

// ContainerClasses are the two fixed style classifiers of the panel container.
var ContainerClasses = [2]string{"col-md-8", "col-sm-2"}

// Viewer is nested content rendered after the panel container.
type Viewer interface {
	View() string
}

// Props is everything a RecordPanel renders from.
type Props struct {
	Subject  state.Subject
	PDS      []state.PDS
	Records  []state.Record
	LinkMode bool
	Children Viewer
}

// PropsFrom binds a subject and nested content to the store's panel view.
func PropsFrom(subject state.Subject, p state.Props, children Viewer) Props {
	return Props{
		Subject:  subject,
		PDS:      p.PDS.Items,
		Records:  p.Record.Items,
		LinkMode: p.LinkMode,
		Children: children,
	}
}

// Options are the presentation settings.
type Options struct {
	Heading    string
	LinkBanner string
	DateFormat string
	Width      int
}

func (o Options) withDefaults() Options {
	if o.Heading == "" {
		o.Heading = DefaultHeading
	}
	if o.LinkBanner == "" {
		o.LinkBanner = DefaultLinkBanner
	}
	if o.DateFormat == "" {
		o.DateFormat = "2006-01-02"
	}
	return o
}

// Group is one PDS and the records it holds.
type Group struct {
	PDS     state.PDS
	Records []state.Record
}

// Tree is the rendered structure before styling.
type Tree struct {
	Classes  [2]string
	Banner   bool
	Heading  string
	Groups   []Group
	Children Viewer
}

// GroupRecords returns one group per PDS item, in order, holding the records
// whose PDS field equals that item's id. Record order is kept. Records that
// match no PDS item appear in no group.
func GroupRecords(pds []state.PDS, records []state.Record) []Group {
	if len(pds) == 0 {
		return nil
	}
	groups := make([]Group, 0, len(pds))
	for _, p := range pds {
		var matched []state.Record
		for _, r := range records {
			if r.PDS == p.ID {
				matched = append(matched, r)
			}
		}
		groups = append(groups, Group{PDS: p, Records: matched})
	}
	return groups
}

// RecordPanel is the grouped record view for one subject. It tells the store
// which subject it shows the first time it mounts.
type RecordPanel struct {
	props    Props
	opts     Options
	dispatch state.Dispatcher

	mount   *sync.Once
	mounted atomic.Bool
}

// New returns an unmounted panel. dispatch receives the mount notification.
func New(props Props, dispatch state.Dispatcher, opts Options) *RecordPanel {
	return &RecordPanel{
		props:    props,
		opts:     opts.withDefaults(),
		dispatch: dispatch,
		mount:    &sync.Once{},
	}
}

// Mount sends SetActiveSubject for the panel's subject. Only the first call
// per panel has any effect.
func (p *RecordPanel) Mount() { p.mountAs(p.props.Subject) }

func (p *RecordPanel) mountAs(subject state.Subject) {
	p.mount.Do(func() {
		p.mounted.Store(true)
		if p.dispatch != nil {
			p.dispatch.Dispatch(state.SetActiveSubject{Subject: subject})
		}
	})
}

// Mounted reports whether Mount has run.
func (p *RecordPanel) Mounted() bool { return p.mounted.Load() }

// Init returns the command that mounts the panel. The subject is read when
// Init is called, since the command runs off the update goroutine.
func (p *RecordPanel) Init() tea.Cmd {
	subject := p.props.Subject
	return func() tea.Msg {
		p.mountAs(subject)
		return nil
	}
}

// Update ignores all messages; the panel is driven through SetProps.
func (p *RecordPanel) Update(tea.Msg) (tea.Model, tea.Cmd) { return p, nil }

// SetProps replaces the props without mounting again.
func (p *RecordPanel) SetProps(props Props) { p.props = props }

// Props returns the current props.
func (p *RecordPanel) Props() Props { return p.props }

// Subject returns the subject this panel was mounted for.
func (p *RecordPanel) Subject() state.Subject { return p.props.Subject }

// Render builds the tree for the current props.
func (p *RecordPanel) Render() Tree {
	return Tree{
		Classes:  ContainerClasses,
		Banner:   p.props.LinkMode,
		Heading:  p.opts.Heading,
		Groups:   GroupRecords(p.props.PDS, p.props.Records),
		Children: p.props.Children,
	}
}

// View renders the panel.
func (p *RecordPanel) View() string {
	tree := p.Render()

	var body []string
	if tree.Banner {
		body = append(body, renderLinkModeBanner(p.opts.LinkBanner))
	}
	body = append(body, headingStyle.Render(tree.Heading))
	for _, g := range tree.Groups {
		body = append(body, renderPDSRecordGroup(g, p.opts.DateFormat))
	}

	out := containerStyle(p.opts.Width).Render(cardStyle.Render(strings.Join(body, "\n")))
	if tree.Children != nil {
		if child := tree.Children.View(); child != "" {
			out += "\n" + child
		}
	}
	return out
}
