package wizard

import (
	"slices"
	"strings"
	"sync"

	"github.com/iudanet/winelog/internal/crypto"
	"github.com/iudanet/winelog/internal/models"
)

// Wizard steps, in order.
const (
	StepLabels   = 1 // label photos and identity
	StepTasting  = 2 // tasting notes and scale
	StepPhoto    = 3 // bottle photo
	StepCard     = 4 // card composition
	StepReview   = 5 // rating, review, visibility
	StepPurchase = 6 // price, purchase location, drink date, save

	TotalSteps = StepPurchase
)

// LabelPair is the pair of label images handed to the analysis call.
type LabelPair struct {
	Front models.Media
	Back  models.Media
	Key   string // Key identifies the pair, see PairKey
}

// AnalysisResult is the identity returned by label analysis.
type AnalysisResult struct {
	Name        string
	Origin      string
	Grape       string
	Year        string
	Alcohol     string
	Type        models.WineType
	Description string
}

// TasteResult is the tasting profile returned by the taste lookup.
type TasteResult struct {
	Aroma     string
	Taste     string
	Finish    string
	Sweetness int
	Acidity   int
	Tannin    int
	Body      int
}

// State owns the diary draft of one wizard run.
// All methods are safe for concurrent use; subscribers are notified outside the lock.
type State struct {
	mu          sync.Mutex
	draft       models.DiaryDraft
	clock       *fieldClock
	claimed     map[string]struct{}
	subscribers map[int]func(models.DiaryDraft)
	nextSub     int
	step        int
	totalSteps  int
	analyzing   bool
	saving      bool
	manual      bool
}

// NewState starts a wizard on draft at the first step.
// totalSteps below 1 is treated as 1.
func NewState(draft models.DiaryDraft, totalSteps int) *State {
	if totalSteps < 1 {
		totalSteps = 1
	}
	return &State{
		draft:       draft.Clone(),
		clock:       newFieldClock(),
		claimed:     make(map[string]struct{}),
		subscribers: make(map[int]func(models.DiaryDraft)),
		step:        1,
		totalSteps:  totalSteps,
	}
}

// ResumeState restores an autosaved wizard run at step without clearing any field.
// The label pair of an AI-assisted draft counts as already analyzed.
// touched lists the fields written before the draft was saved, see Touched; they
// keep counting as written so a late result does not overwrite them. Records
// saved without the list fall back to stamping every scale axis off the minimum.
func ResumeState(draft models.DiaryDraft, totalSteps, step int, manual bool, touched []string) *State {
	s := NewState(draft, totalSteps)
	s.step = s.clampStep(step)
	s.manual = manual
	if w := s.draft.Wine; draft.AIAssisted && w.BothLabels() {
		s.claimed[PairKey(w.FrontImage, w.BackImage)] = struct{}{}
	}

	for _, f := range touched {
		s.clock.tick(Field(f))
	}
	w := s.draft.Wine
	for f, v := range map[Field]int{
		FieldSweetness: w.Sweetness,
		FieldAcidity:   w.Acidity,
		FieldTannin:    w.Tannin,
		FieldBody:      w.Body,
	} {
		if v != models.MinScale && s.clock.stamp(f) == 0 {
			s.clock.tick(f)
		}
	}
	return s
}

// Touched returns the fields written during this run, sorted.
func (s *State) Touched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := make([]string, 0, len(s.clock.stamps))
	for f := range s.clock.stamps {
		fields = append(fields, string(f))
	}
	slices.Sort(fields)
	return fields
}

// Draft returns a copy of the current draft.
func (s *State) Draft() models.DiaryDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Step returns the active step, in [1, TotalSteps].
func (s *State) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// TotalSteps returns the number of steps of this wizard.
func (s *State) TotalSteps() int {
	return s.totalSteps
}

func (s *State) Analyzing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzing
}

func (s *State) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

func (s *State) ManualEntry() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manual
}

// Update merges the non-nil fields of p into the draft.
// A patch that carries AIAssisted ends a running analysis.
func (s *State) Update(p DiaryPatch) {
	s.mutate(func() {
		p.apply(s.clock, &s.draft)
		if p.AIAssisted != nil {
			s.analyzing = false
		}
	})
}

// UpdateWine merges the non-nil fields of p into the wine data.
func (s *State) UpdateWine(p WinePatch) {
	s.mutate(func() {
		p.apply(s.clock, &s.draft.Wine)
	})
}

// Advance moves one step forward; no-op on the last step.
func (s *State) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = s.clampStep(s.step + 1)
}

// Retreat moves one step back; no-op on the first step.
func (s *State) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = s.clampStep(s.step - 1)
}

// JumpTo moves directly to step, clamped to the valid range.
func (s *State) JumpTo(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = s.clampStep(step)
}

func (s *State) clampStep(step int) int {
	if step < 1 {
		return 1
	}
	if step > s.totalSteps {
		return s.totalSteps
	}
	return step
}

func (s *State) StartAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzing = true
}

func (s *State) FailAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzing = false
}

// StartSaving sets the saving flag. It returns false when a save is already running.
func (s *State) StartSaving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return false
	}
	s.saving = true
	return true
}

func (s *State) FinishSaving() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
}

// SetManualEntry switches between AI-assisted and manual entry.
// Turning manual entry on clears the AI-populated identity fields and nothing else.
func (s *State) SetManualEntry(on bool) {
	s.mutate(func() {
		if s.manual == on {
			return
		}
		s.manual = on
		if !on {
			return
		}
		p := WinePatch{
			Name:        Ptr(""),
			Grape:       Ptr(""),
			Origin:      Ptr(""),
			Year:        Ptr(""),
			Type:        Ptr(models.WineType("")),
			Description: Ptr(""),
			Alcohol:     Ptr(""),
		}
		p.apply(s.clock, &s.draft.Wine)
		s.draft.AIAssisted = false
		s.clock.tick(FieldAIAssisted)
		s.analyzing = false
	})
}

// ClaimAnalysis returns the current label pair when both labels are present,
// manual entry is off and the pair has not been claimed before.
// A successful claim sets the analyzing flag.
func (s *State) ClaimAnalysis() (LabelPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.draft.Wine
	if s.manual || !w.BothLabels() {
		return LabelPair{}, false
	}
	key := PairKey(w.FrontImage, w.BackImage)
	if _, ok := s.claimed[key]; ok {
		return LabelPair{}, false
	}
	s.claimed[key] = struct{}{}
	s.analyzing = true
	return LabelPair{Front: w.FrontImage.Clone(), Back: w.BackImage.Clone(), Key: key}, true
}

// CanSave reports whether price, purchase location and drink date are all filled.
// Whitespace-only values count as empty, unlike a plain emptiness check.
func (s *State) CanSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft
	return strings.TrimSpace(d.Price) != "" &&
		strings.TrimSpace(d.PurchaseLocation) != "" &&
		strings.TrimSpace(d.DrinkDate) != ""
}

// Snapshot captures the field clocks, to be passed back with a late result.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.snapshot()
}

// ApplyAnalysis writes the analysis result into fields that are still empty and
// were not edited after snap. It marks the draft AI-assisted and ends the analysis.
// A result arriving after manual entry was switched on is dropped.
func (s *State) ApplyAnalysis(snap Snapshot, r AnalysisResult) {
	s.mutate(func() {
		s.analyzing = false
		if s.manual {
			return
		}
		w := &s.draft.Wine
		s.fill(snap, FieldName, &w.Name, r.Name)
		s.fill(snap, FieldOrigin, &w.Origin, r.Origin)
		s.fill(snap, FieldGrape, &w.Grape, r.Grape)
		s.fill(snap, FieldYear, &w.Year, r.Year)
		s.fill(snap, FieldAlcohol, &w.Alcohol, r.Alcohol)
		s.fill(snap, FieldDescription, &w.Description, r.Description)
		if r.Type != "" && w.Type == "" && snap.unchanged(s.clock, FieldType) {
			w.Type = r.Type
			s.clock.tick(FieldType)
		}
		s.draft.AIAssisted = true
		s.clock.tick(FieldAIAssisted)
	})
}

// ApplyTaste writes the tasting profile into notes that are still empty and scale
// axes that were not edited after snap. Zero scale values map to the minimum.
func (s *State) ApplyTaste(snap Snapshot, r TasteResult) {
	s.mutate(func() {
		w := &s.draft.Wine
		s.fill(snap, FieldAromaNote, &w.AromaNote, r.Aroma)
		s.fill(snap, FieldTasteNote, &w.TasteNote, r.Taste)
		s.fill(snap, FieldFinishNote, &w.FinishNote, r.Finish)
		s.fillScale(snap, FieldSweetness, &w.Sweetness, r.Sweetness)
		s.fillScale(snap, FieldAcidity, &w.Acidity, r.Acidity)
		s.fillScale(snap, FieldTannin, &w.Tannin, r.Tannin)
		s.fillScale(snap, FieldBody, &w.Body, r.Body)
	})
}

func (s *State) fill(snap Snapshot, f Field, dst *string, v string) {
	if v == "" || *dst != "" || !snap.unchanged(s.clock, f) {
		return
	}
	*dst = v
	s.clock.tick(f)
}

// fillScale treats scale axes as empty until the user touches them.
func (s *State) fillScale(snap Snapshot, f Field, dst *int, v int) {
	if s.clock.stamp(f) != 0 || !snap.unchanged(s.clock, f) {
		return
	}
	*dst = models.ClampScale(v)
	s.clock.tick(f)
}

// Subscribe registers fn to receive a copy of the draft after every change.
// The returned func removes the subscription.
func (s *State) Subscribe(fn func(models.DiaryDraft)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *State) mutate(fn func()) {
	s.mu.Lock()
	fn()
	draft := s.draft.Clone()
	subs := make([]func(models.DiaryDraft), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(draft)
	}
}

// PairKey identifies a (front, back) label pair by the SHA-256 of each image,
// falling back to the URL when no bytes are attached.
func PairKey(front, back models.Media) string {
	return mediaKey(front) + ":" + mediaKey(back)
}

func mediaKey(m models.Media) string {
	if len(m.Data) == 0 {
		return "url:" + m.URL
	}
	return crypto.Fingerprint(m.Data)
}
