package workouts

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SlotState classifies one exercise slot of a draft. A slot starts Empty,
// selecting an exercise moves it to Invalid (default data carries no reps or
// duration yet), and filling the numbers in moves it to Valid.
type SlotState string

const (
	SlotEmpty   SlotState = "empty"
	SlotValid   SlotState = "valid"
	SlotInvalid SlotState = "invalid"
)

// SlotData is the raw editing shape: both reps and duration are always
// present even though only one of them is meaningful for the selected
// exercise. Zero means "not filled in".
type SlotData struct {
	Sets     int `json:"sets"`
	Reps     int `json:"reps"`
	Duration int `json:"duration"`
}

// Slot is one exercise position inside a draft block.
type Slot struct {
	Exercise       string   `json:"exercise"` // catalog label while editing
	TrackingFields []string `json:"trackingFields"`
	Data           SlotData `json:"data"`
}

// Select binds the slot to a catalog exercise: the tracking fields are
// derived from the exercise's tracking parameter right here, at selection
// time, and the data resets to one set with nothing filled in.
func (s *Slot) Select(ex Exercise) {
	s.Exercise = ex.Label
	s.TrackingFields = []string{"sets", string(ex.TrackingParam)}
	s.Data = SlotData{Sets: 1}
}

// Clear returns the slot to the Empty state.
func (s *Slot) Clear() {
	*s = Slot{}
}

// Valid applies the joint constraint: sets has to be at least 1 and at least
// one of reps/duration has to be at least 1. Reps and duration validate as a
// pair since the schema always carries both keys but only one is meaningful.
func (s Slot) Valid() bool {
	return s.Data.Sets >= 1 && (s.Data.Reps >= 1 || s.Data.Duration >= 1)
}

func (s Slot) State() SlotState {
	if s.Exercise == "" {
		return SlotEmpty
	}
	if s.Valid() {
		return SlotValid
	}
	return SlotInvalid
}

// Scheme normalizes the slot into its tagged variant. Only valid selected
// slots have a scheme.
func (s Slot) Scheme() (SetScheme, error) {
	if s.State() != SlotValid {
		return nil, fmt.Errorf("slot %q has no valid scheme", s.Exercise)
	}
	return schemeFor(trackingParamOf(s.TrackingFields), s.Data), nil
}

// schemeFor shapes the slot numbers under the given tracking parameter.
func schemeFor(param TrackingParam, data SlotData) SetScheme {
	if param == TrackDuration {
		return DurationScheme{Sets: data.Sets, Duration: data.Duration}
	}
	return RepsScheme{Sets: data.Sets, Reps: data.Reps}
}

// Block is an ordered group of exercise slots performed together.
type Block struct {
	Slots []Slot `json:"slots"`
}

// Valid - a block counts when it holds at least one valid slot.
func (b Block) Valid() bool {
	for _, s := range b.Slots {
		if s.State() == SlotValid {
			return true
		}
	}
	return false
}

// Draft is the in-progress workout composition. Blocks and slots are
// append-only ordered sequences; removal keeps the relative order of the
// remaining siblings and display labels are always recomputed from position.
type Draft struct {
	Name   string  `json:"name"`
	Blocks []Block `json:"blocks"`
}

// NewDraft starts a composition with one block holding one empty slot.
func NewDraft() *Draft {
	return &Draft{
		Blocks: []Block{{Slots: []Slot{{}}}},
	}
}

func (d *Draft) AddBlock() {
	d.Blocks = append(d.Blocks, Block{Slots: []Slot{{}}})
}

func (d *Draft) RemoveBlock(blockIdx int) {
	if blockIdx < 0 || blockIdx >= len(d.Blocks) {
		return
	}
	d.Blocks = append(d.Blocks[:blockIdx], d.Blocks[blockIdx+1:]...)
}

func (d *Draft) AddSlot(blockIdx int) {
	if blockIdx < 0 || blockIdx >= len(d.Blocks) {
		return
	}
	d.Blocks[blockIdx].Slots = append(d.Blocks[blockIdx].Slots, Slot{})
}

func (d *Draft) RemoveSlot(blockIdx, slotIdx int) {
	if blockIdx < 0 || blockIdx >= len(d.Blocks) {
		return
	}
	slots := d.Blocks[blockIdx].Slots
	if slotIdx < 0 || slotIdx >= len(slots) {
		return
	}
	d.Blocks[blockIdx].Slots = append(slots[:slotIdx], slots[slotIdx+1:]...)
}

func (d *Draft) SelectExercise(blockIdx, slotIdx int, ex Exercise) {
	if blockIdx < 0 || blockIdx >= len(d.Blocks) {
		return
	}
	slots := d.Blocks[blockIdx].Slots
	if slotIdx < 0 || slotIdx >= len(slots) {
		return
	}
	slots[slotIdx].Select(ex)
}

func (d *Draft) SetSlotData(blockIdx, slotIdx int, data SlotData) {
	if blockIdx < 0 || blockIdx >= len(d.Blocks) {
		return
	}
	slots := d.Blocks[blockIdx].Slots
	if slotIdx < 0 || slotIdx >= len(slots) {
		return
	}
	slots[slotIdx].Data = data
}

// SlotLabel is the display label of a slot, block number plus slot letter,
// e.g. "2B" for the second slot of the second block. Computed from position,
// never stored.
func SlotLabel(blockIdx, slotIdx int) string {
	return fmt.Sprintf("%d%c", blockIdx+1, 'A'+rune(slotIdx))
}

// Valid - submission gate: a name and at least one valid block.
func (d *Draft) Valid() bool {
	if strings.TrimSpace(d.Name) == "" {
		return false
	}
	for _, b := range d.Blocks {
		if b.Valid() {
			return true
		}
	}
	return false
}

// ValidationError points at one offending field of the draft. These surface
// inline next to the field and never abort the editing session.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate collects the per-field violations of the whole draft. Empty slots
// are not flagged (they are simply dropped on submission), but a selected
// slot with bad numbers is, and so is a block with nothing valid in it.
func (d *Draft) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "workout name is required",
		})
	}

	validBlocks := 0
	for bi, block := range d.Blocks {
		if block.Valid() {
			validBlocks++
		}
		for si, slot := range block.Slots {
			if slot.State() != SlotInvalid {
				continue
			}
			field := fmt.Sprintf("blocks[%d].slots[%d]", bi, si)
			if slot.Data.Sets < 1 {
				errs = append(errs, ValidationError{
					Field:   field + ".sets",
					Message: "sets has to be at least 1",
				})
			}
			if slot.Data.Reps < 1 && slot.Data.Duration < 1 {
				errs = append(errs, ValidationError{
					Field:   field + ".reps",
					Message: "either reps or duration has to be at least 1",
				})
			}
		}
	}

	if validBlocks == 0 {
		errs = append(errs, ValidationError{
			Field:   "blocks",
			Message: "at least one block with a valid exercise is required",
		})
	}

	return errs
}

type labelResolver interface {
	Resolve(ctx context.Context, label string) (int, TrackingParam, bool)
}

// BuildDocument flattens a valid draft into the wire document the store
// persists. Every slot's label is resolved to the catalog id by exact label
// match, and a resolved slot takes its tracking fields from the catalog
// entry rather than from whatever the draft carried. An unmatched label is
// passed through unchanged, which knowingly produces a dangling reference
// instead of failing the submission.
func (d *Draft) BuildDocument(ctx context.Context, resolver labelResolver) (*Document, error) {
	if errs := d.Validate(); len(errs) > 0 {
		return nil, errs
	}

	doc := &Document{Name: strings.TrimSpace(d.Name)}
	for _, block := range d.Blocks {
		var docBlock DocumentBlock
		for _, slot := range block.Slots {
			if slot.State() == SlotEmpty {
				continue
			}

			scheme, err := slot.Scheme()
			if err != nil {
				return nil, err
			}

			ref := UnresolvedRef(slot.Exercise)
			if id, param, ok := resolver.Resolve(ctx, slot.Exercise); ok {
				ref = ResolvedRef(id)
				// tracking fields follow the catalog entry, a client that
				// shipped edited fields does not get them persisted
				scheme = schemeFor(param, slot.Data)
			} else {
				log.Warnf("exercise label %q not in catalog, passing through unresolved", slot.Exercise)
			}

			docBlock.Exercises = append(docBlock.Exercises, DocumentExercise{
				Exercise:       ref,
				TrackingFields: scheme.TrackingFields(),
				Data:           scheme.Flatten(),
			})
		}
		if len(docBlock.Exercises) > 0 {
			doc.Blocks = append(doc.Blocks, docBlock)
		}
	}

	return doc, nil
}
