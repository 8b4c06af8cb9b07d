package dtnsim

// report.go collects run-end statistics (§6): delivery ratio, overhead
// ratio, and hop-count mean/stddev across every message ever originated
// (MessageStatsReport; message latency is not computed); per-host
// trajectory CSV output
// (NodeTrajectoryReport); and the community/popularity aggregates that
// supplement Bubble Rap and PeopleRank runs with gonum/stat summary
// statistics, using small report structs built from accumulated
// counters rather than a reporting framework.

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// messageOutcome records one message's final disposition, gathered via
// a DeliveryListener registered on the World.
type messageOutcome struct {
	id         string
	createdAt  float64
	delivered  bool
	deliveredAt float64
	hops       int
	relays     int
	dropped    bool
}

// MessageStatsReport implements DeliveryListener, accumulating the
// counters needed for §6's delivery-ratio and overhead-ratio statistics
// and for hop-count statistics. It records no creation or delivery
// times, so it reports no latency.
type MessageStatsReport struct {
	outcomes map[string]*messageOutcome
	relaysOf map[string]int
}

// CreateMessageStatsReport is a constructor.
func CreateMessageStatsReport() *MessageStatsReport {
	return &MessageStatsReport{
		outcomes: make(map[string]*messageOutcome),
		relaysOf: make(map[string]int),
	}
}

func (r *MessageStatsReport) NewMessage(host *Host, m *Message) {
	if _, present := r.outcomes[m.ID]; present {
		return
	}
	r.outcomes[m.ID] = &messageOutcome{id: m.ID, createdAt: 0}
}

func (r *MessageStatsReport) MessageDelivered(host *Host, m *Message) {
	o, present := r.outcomes[m.ID]
	if !present {
		o = &messageOutcome{id: m.ID}
		r.outcomes[m.ID] = o
	}
	o.delivered = true
	o.hops = m.HopCount()
	o.relays = r.relaysOf[m.ID]
}

func (r *MessageStatsReport) MessageDropped(host *Host, m *Message, relayed bool) {
	if relayed {
		r.relaysOf[m.ID]++
	}
	o, present := r.outcomes[m.ID]
	if present && !o.delivered {
		o.dropped = true
	}
}

// DeliveryRatio is the fraction of originated messages eventually
// delivered.
func (r *MessageStatsReport) DeliveryRatio() float64 {
	if len(r.outcomes) == 0 {
		return 0
	}
	delivered := 0
	for _, o := range r.outcomes {
		if o.delivered {
			delivered++
		}
	}
	return float64(delivered) / float64(len(r.outcomes))
}

// OverheadRatio is (relays - delivered) / delivered, the standard DTN
// overhead metric: how many extra copies circulated per message that
// actually arrived.
func (r *MessageStatsReport) OverheadRatio() float64 {
	delivered := 0
	relays := 0
	for id, o := range r.outcomes {
		if o.delivered {
			delivered++
		}
		relays += r.relaysOf[id]
	}
	if delivered == 0 {
		return 0
	}
	return float64(relays-delivered) / float64(delivered)
}

// HopCountStats returns the mean and standard deviation of hop counts
// across delivered messages, via gonum/stat.
func (r *MessageStatsReport) HopCountStats() (mean, stddev float64) {
	var hops []float64
	for _, o := range r.outcomes {
		if o.delivered {
			hops = append(hops, float64(o.hops))
		}
	}
	if len(hops) == 0 {
		return 0, 0
	}
	mean, stddev = stat.MeanStdDev(hops, nil)
	return mean, stddev
}

// NodeTrajectoryReport accumulates per-tick host positions and writes
// them out as CSV for post-run mobility visualization.
type NodeTrajectoryReport struct {
	rows [][]string
}

// CreateNodeTrajectoryReport is a constructor.
func CreateNodeTrajectoryReport() *NodeTrajectoryReport {
	return &NodeTrajectoryReport{rows: [][]string{{"time", "host", "x", "y"}}}
}

// Sample records every host's current position at the given simulated
// time; call once per tick (or at a coarser sampling interval) from the
// simulation driver.
func (r *NodeTrajectoryReport) Sample(now float64, hosts []*Host) {
	for _, h := range hosts {
		r.rows = append(r.rows, []string{
			fmt.Sprintf("%f", now),
			h.Name,
			fmt.Sprintf("%f", h.X),
			fmt.Sprintf("%f", h.Y),
		})
	}
}

// WriteCSV writes the accumulated rows to filename.
func (r *NodeTrajectoryReport) WriteCSV(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	return w.WriteAll(r.rows)
}

// CommunityReport summarizes, for every host running a strategy that
// exposes a BubbleRapPeerView, its community size and centrality at
// run end.
type CommunityReport struct {
	rows []communityRow
}

type communityRow struct {
	host              string
	communitySize     int
	globalCentrality  float64
	localCentrality   float64
}

// CreateCommunityReport is a constructor.
func CreateCommunityReport() *CommunityReport { return &CommunityReport{} }

// Sample records one host's community state, reading it through the
// BubbleRapPeerView interface (design note 9a); hosts running a
// different strategy are silently skipped.
func (r *CommunityReport) Sample(h *Host, members []int) {
	view, ok := h.Router.(BubbleRapPeerView)
	if !ok {
		return
	}
	r.rows = append(r.rows, communityRow{
		host:             h.Name,
		communitySize:    len(members),
		globalCentrality: view.GlobalCentrality(),
		localCentrality:  view.LocalCentrality(),
	})
}

// MeanCommunitySize returns the mean community size across every
// sampled host, via gonum/stat.
func (r *CommunityReport) MeanCommunitySize() float64 {
	if len(r.rows) == 0 {
		return 0
	}
	sizes := make([]float64, len(r.rows))
	for i, row := range r.rows {
		sizes[i] = float64(row.communitySize)
	}
	return stat.Mean(sizes, nil)
}

// GlobalPopularityReport ranks hosts by how many contact events they
// have taken part in (a repeated contact with the same peer counts
// again) -- a simple proxy for
// "popularity" used to sanity-check PeopleRank and SimBet scenarios
// against raw contact frequency.
type GlobalPopularityReport struct {
	contactCount map[int]int
	hostName     map[int]string
}

// CreateGlobalPopularityReport is a constructor.
func CreateGlobalPopularityReport() *GlobalPopularityReport {
	return &GlobalPopularityReport{
		contactCount: make(map[int]int),
		hostName:     make(map[int]string),
	}
}

// NoteContact records one direct contact between a and b.
func (r *GlobalPopularityReport) NoteContact(a, b *Host) {
	r.contactCount[a.Addr]++
	r.contactCount[b.Addr]++
	r.hostName[a.Addr] = a.Name
	r.hostName[b.Addr] = b.Name
}

// TopN returns the N hosts with the most distinct contact events,
// descending.
func (r *GlobalPopularityReport) TopN(n int) []string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(r.contactCount))
	for addr, count := range r.contactCount {
		entries = append(entries, entry{name: r.hostName[addr], count: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].count > entries[j].count })
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf("%s (%d)", entries[i].name, entries[i].count)
	}
	return out
}
