package dtnsim

// community.go implements the two community-detection schemes Bubble
// Rap routers use to decide "is this peer in my community": K-CLIQUE
// (the default) and Simple. Grounded on BubbleRapRouter.java's
// community-detection family, adapted here into a standalone
// per-router structure since the World no longer owns a process-wide
// static community table (design note 9).

// CommunityDetector tracks, for one host, which other hosts it
// currently considers to be in its local community.
type CommunityDetector interface {
	// NoteContact records a direct contact for familiarity bookkeeping.
	NoteContact(peer int, now float64)
	// InCommunity reports whether peer is currently a community member.
	InCommunity(peer int) bool
	// Members returns every host currently in the community.
	Members() []int
}

// familiarity tracks, per peer, the number of contacts and the time of
// the last one, used by both community-detection schemes to threshold
// membership. Contact duration is not tracked.
type familiarity struct {
	contacts   map[int]int     // peer -> contact count
	lastSeen   map[int]float64 // peer -> last contact time
}

func newFamiliarity() familiarity {
	return familiarity{contacts: make(map[int]int), lastSeen: make(map[int]float64)}
}

func (f *familiarity) note(peer int, now float64) {
	f.contacts[peer]++
	f.lastSeen[peer] = now
}

// SimpleCommunity implements the "Simple" scheme: a peer joins the
// community once its contact count crosses a familiarity threshold, and
// never leaves (a monotone, family-of-friends model).
type SimpleCommunity struct {
	familiarity
	members   map[int]bool
	threshold int
}

// CreateSimpleCommunity is a constructor. threshold is the number of
// contacts required before a peer is admitted to the community.
func CreateSimpleCommunity(threshold int) *SimpleCommunity {
	return &SimpleCommunity{
		familiarity: newFamiliarity(),
		members:     make(map[int]bool),
		threshold:   threshold,
	}
}

func (c *SimpleCommunity) NoteContact(peer int, now float64) {
	c.note(peer, now)
	if c.contacts[peer] >= c.threshold {
		c.members[peer] = true
	}
}

func (c *SimpleCommunity) InCommunity(peer int) bool { return c.members[peer] }

func (c *SimpleCommunity) Members() []int {
	out := make([]int, 0, len(c.members))
	for p := range c.members {
		out = append(out, p)
	}
	return out
}

// KCliqueCommunity is the detector used for the K-CLIQUE scheme. It
// admits a peer to the community once this host has had at least k
// direct contacts with that peer. The peer's own contacts and community
// are not consulted, and no clique overlap is computed or merged.
type KCliqueCommunity struct {
	familiarity
	members map[int]bool
	k       int
	// sharedContacts counts, for every peer ever contacted, the number
	// of direct contacts this host has had with that peer.
	sharedContacts map[int]int
}

// CreateKCliqueCommunity is a constructor.
func CreateKCliqueCommunity(k int) *KCliqueCommunity {
	return &KCliqueCommunity{
		familiarity:    newFamiliarity(),
		members:        make(map[int]bool),
		k:              k,
		sharedContacts: make(map[int]int),
	}
}

// NoteContact records a direct contact with peer and admits peer to the
// community once its contact count reaches k.
func (c *KCliqueCommunity) NoteContact(peer int, now float64) {
	c.note(peer, now)
	if c.contacts[peer] >= 1 {
		c.sharedContacts[peer]++
	}
	if c.sharedContacts[peer] >= c.k {
		c.members[peer] = true
	}
}

func (c *KCliqueCommunity) InCommunity(peer int) bool { return c.members[peer] }

func (c *KCliqueCommunity) Members() []int {
	out := make([]int, 0, len(c.members))
	for p, in := range c.members {
		if in {
			out = append(out, p)
		}
	}
	return out
}
