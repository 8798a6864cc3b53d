package review

import (
	"errors"
	"testing"

	"github.com/example/leitbox/internal/cards"
	"github.com/example/leitbox/internal/session"
	"github.com/example/leitbox/internal/storage"
	"github.com/example/leitbox/pkg/models"
)

func memService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store), store
}

const lessonJSON = `{"cards":[
	{"id": "c1", "question": "Hello", "answer": "سلام"},
	{"id": "c2", "question": "Goodbye", "answer": "خداحافظ"}
]}`

func TestImportJSONStoresCards(t *testing.T) {
	svc, _ := memService(t)
	res, err := svc.ImportJSON("l1", []byte(lessonJSON))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Source != cards.SourceLoaded {
		t.Errorf("source = %v, want loaded", res.Source)
	}

	cs, err := svc.Cards("l1")
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	if len(cs) != 2 || cs[0].ID != "c1" {
		t.Errorf("stored cards = %+v", cs)
	}
}

func TestImportMalformedFallsBackToSamples(t *testing.T) {
	svc, _ := memService(t)
	res, err := svc.ImportJSON("l1", []byte(`{"cards": "nope"}`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Source != cards.SourceFallback || len(res.Cards) != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestBeginUnknownLesson(t *testing.T) {
	svc, _ := memService(t)
	if _, err := svc.Begin("ghost"); !errors.Is(err, ErrNoLesson) {
		t.Errorf("err = %v, want ErrNoLesson", err)
	}
}

// Full pass: two due cards, one answered correct and one wrong, checked
// against session stats, persisted card state and the reward outcome.
func TestEndToEndSession(t *testing.T) {
	svc, store := memService(t)
	if _, err := svc.ImportJSON("l1", []byte(lessonJSON)); err != nil {
		t.Fatal(err)
	}

	runner, err := svc.Begin("l1")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if runner.Session.DueCount() != 2 {
		t.Fatalf("due = %d, want 2", runner.Session.DueCount())
	}

	runner.Session.Reveal()
	if res, err := runner.Answer(true); err != nil || res != session.ResultOK {
		t.Fatalf("first answer: res=%v err=%v", res, err)
	}

	// Card state should already be durable, before the session ends.
	var persisted []models.Card
	if ok, _ := store.Load("l1", storage.KindCards, &persisted); !ok {
		t.Fatal("cards not persisted after answer")
	}
	if persisted[0].Box != 2 || persisted[0].Stats.Correct != 1 {
		t.Errorf("persisted card after correct answer: %+v", persisted[0])
	}

	runner.Session.Reveal()
	if res, err := runner.Answer(false); err != nil || res != session.ResultOK {
		t.Fatalf("second answer: res=%v err=%v", res, err)
	}
	if !runner.Session.Complete() {
		t.Error("session should be complete")
	}

	outcome, err := runner.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if outcome.Stats.Reviewed != 2 || outcome.Stats.Correct != 1 || outcome.Stats.Incorrect != 1 {
		t.Errorf("stats = %+v", outcome.Stats)
	}
	if outcome.Accuracy != 50 {
		t.Errorf("accuracy = %d, want 50", outcome.Accuracy)
	}
	if len(outcome.NewAchievements) == 0 {
		t.Error("first session should unlock at least one achievement")
	}

	// Wrong answer sent c2 back to box 1.
	store.Load("l1", storage.KindCards, &persisted)
	if persisted[1].Box != 1 || persisted[1].Stats.Wrong != 1 {
		t.Errorf("persisted card after wrong answer: %+v", persisted[1])
	}
}

// A generated example sentence must outlive the session it was requested in.
func TestAttachExamplePersists(t *testing.T) {
	svc, store := memService(t)
	if _, err := svc.ImportJSON("l1", []byte(lessonJSON)); err != nil {
		t.Fatal(err)
	}

	runner, err := svc.Begin("l1")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := runner.AttachExample("Hello, how are you?"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	var persisted []models.Card
	if ok, _ := store.Load("l1", storage.KindCards, &persisted); !ok {
		t.Fatal("cards not persisted")
	}
	current := runner.Session.Current()
	for _, c := range persisted {
		if c.ID == current.ID {
			if c.Example != "Hello, how are you?" {
				t.Errorf("persisted example = %q", c.Example)
			}
			return
		}
	}
	t.Fatalf("card %s missing from persisted set", current.ID)
}

func TestAttachExampleOnCompleteSession(t *testing.T) {
	svc, _ := memService(t)
	svc.ImportJSON("l1", []byte(`{"cards":[{"id":"c1","question":"a","answer":"b"}]}`))
	runner, _ := svc.Begin("l1")
	runner.Answer(true)
	if err := runner.AttachExample("ignored"); err != nil {
		t.Errorf("attach on complete session: %v", err)
	}
}

func TestAnswerOnCompleteSession(t *testing.T) {
	svc, _ := memService(t)
	svc.ImportJSON("l1", []byte(`{"cards":[{"id":"c1","question":"a","answer":"b"}]}`))
	runner, err := svc.Begin("l1")
	if err != nil {
		t.Fatal(err)
	}
	runner.Answer(true)
	res, err := runner.Answer(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != session.ResultAlreadyComplete {
		t.Errorf("res = %v, want already-complete", res)
	}
}

func TestDueCountAfterReview(t *testing.T) {
	svc, _ := memService(t)
	svc.ImportJSON("l1", []byte(lessonJSON))

	n, err := svc.DueCount("l1")
	if err != nil || n != 2 {
		t.Fatalf("due before = %d (%v), want 2", n, err)
	}

	runner, _ := svc.Begin("l1")
	runner.Answer(true)
	runner.Answer(true)
	runner.Finish()

	// Both cards moved to box 2 with nextReview tomorrow.
	n, err = svc.DueCount("l1")
	if err != nil || n != 0 {
		t.Errorf("due after = %d (%v), want 0", n, err)
	}
}

func TestResetLesson(t *testing.T) {
	svc, _ := memService(t)
	svc.ImportJSON("l1", []byte(lessonJSON))
	runner, _ := svc.Begin("l1")
	runner.Answer(true)
	runner.Finish()

	if err := svc.ResetLesson("l1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := svc.Cards("l1"); !errors.Is(err, ErrNoLesson) {
		t.Errorf("cards after reset: err = %v, want ErrNoLesson", err)
	}
}
