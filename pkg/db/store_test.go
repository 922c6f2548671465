package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func TestCreateOrGetWord(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id1, err := CreateOrGetWord(db, Word{Word: "犬", Lemma: "犬", Language: "ja"})
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	id2, err := CreateOrGetWord(db, Word{Word: "犬", Lemma: "犬", Language: "ja", Pronunciation: "いぬ"})
	if err != nil {
		t.Fatalf("get word: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same id, got %d and %d", id1, id2)
	}
	id3, err := CreateOrGetWord(db, Word{Word: "犬", Lemma: "犬", Language: "zh"})
	if err != nil {
		t.Fatalf("create zh word: %v", err)
	}
	if id3 == id1 {
		t.Fatal("same surface in another language must be a separate row")
	}
	var pron string
	if err := db.QueryRow(`SELECT pronunciation FROM words WHERE id = ?`, id1).Scan(&pron); err != nil {
		t.Fatal(err)
	}
	if pron != "いぬ" {
		t.Fatalf("expected pronunciation to be filled in, got %q", pron)
	}
}

func TestCreateOrGetWordValidation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if _, err := CreateOrGetWord(db, Word{Word: "  ", Language: "ja"}); err == nil {
		t.Error("expected error for blank word")
	}
	if _, err := CreateOrGetWord(db, Word{Word: "犬"}); err == nil {
		t.Error("expected error for missing language")
	}
}

func TestCreateOrGetSource(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	src := Source{SourceType: "website_article", Website: "example.com", URL: "https://example.com/a"}
	id1, err := CreateOrGetSource(db, src)
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	id2, err := CreateOrGetSource(db, src)
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same source id, got %d and %d", id1, id2)
	}
	progress, err := GetSourceProgress(db, id1)
	if err != nil {
		t.Fatal(err)
	}
	if progress != -1 {
		t.Fatalf("new source should start at -1, got %d", progress)
	}
}

func TestLinkAndQuery(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	wID, err := CreateOrGetWord(db, Word{Word: "猫", Lemma: "猫", Language: "ja"})
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	sID, err := CreateOrGetSource(db, Source{SourceType: "website_article", URL: "https://example.com/b"})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if err := LinkWordToSource(db, wID, sID, "この猫は可愛い。", 1); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := LinkWordToSource(db, wID, sID, "この猫は可愛い。", 2); err != nil {
		t.Fatalf("link 2: %v", err)
	}
	ws, err := GetWordSource(db, wID, sID)
	if err != nil {
		t.Fatalf("get link: %v", err)
	}
	if ws.OccurrenceCount != 3 {
		t.Fatalf("expected occurrence_count=3, got %d", ws.OccurrenceCount)
	}
	if ws.ContextSentence != "この猫は可愛い。" {
		t.Fatalf("unexpected context %q", ws.ContextSentence)
	}

	words, err := GetWordsBySource(db, sID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(words) != 1 || words[0].Word != "猫" {
		t.Fatalf("unexpected words %+v", words)
	}
}

func TestLinkWithoutContext(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	wID, _ := CreateOrGetWord(db, Word{Word: "跑", Lemma: "跑", Language: "zh"})
	sID, _ := CreateOrGetSource(db, Source{SourceType: "text", Title: "t"})
	if err := LinkWordToSource(db, wID, sID, "", 1); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := LinkWordToSource(db, wID, sID, "x", 0); err == nil {
		t.Fatal("expected error for zero increment")
	}
}

func TestContextsAreCapped(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	wID, _ := CreateOrGetWord(db, Word{Word: "跑", Lemma: "跑", Language: "zh"})
	sID, _ := CreateOrGetSource(db, Source{SourceType: "text", Title: "cap"})
	for _, s := range []string{"一", "二", "三", "四", "五", "六", "七"} {
		if err := LinkWordToSource(db, wID, sID, s+"跑。", 1); err != nil {
			t.Fatalf("link: %v", err)
		}
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM word_contexts`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != MaxContextsPerLink {
		t.Fatalf("expected %d contexts, got %d", MaxContextsPerLink, n)
	}
}

func TestWordDefinitions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if _, _, ok, err := GetWordDefinitions(db, "燈光", "zh"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	id, err := CreateOrGetWord(db, Word{Word: "燈光", Lemma: "燈光", Language: "zh"})
	if err != nil {
		t.Fatal(err)
	}
	if err := UpdateWordDefinitions(db, id, `{"word":"燈光"}`, "moedict"); err != nil {
		t.Fatal(err)
	}
	defs, src, ok, err := GetWordDefinitions(db, "燈光", "zh")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if defs != `{"word":"燈光"}` || src != "moedict" {
		t.Fatalf("unexpected %q %q", defs, src)
	}
	if _, _, ok, _ := GetWordDefinitions(db, "燈光", "ja"); ok {
		t.Fatal("definitions must be per language")
	}
}

func TestCreateOrGetWordConcurrency(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	const n = 8
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		go func() {
			id, err := CreateOrGetWord(db, Word{Word: "犬", Lemma: "犬", Language: "ja"})
			if err != nil {
				t.Errorf("create or get word: %v", err)
				ids <- 0
				return
			}
			ids <- id
		}()
	}
	var first int64
	for i := 0; i < n; i++ {
		id := <-ids
		if id == 0 {
			t.Fatalf("error in goroutine")
		}
		if i == 0 {
			first = id
		}
		if id != first {
			t.Fatalf("expected same id, got %d and %d", first, id)
		}
	}
	var cnt int
	err := db.QueryRow(`SELECT COUNT(*) FROM words WHERE word = ? AND lemma = ?`, "犬", "犬").Scan(&cnt)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 word row, got %d", cnt)
	}
}

func TestCreateOrGetSourceConcurrency(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	const n = 8
	ids := make(chan int64, n)
	src := Source{SourceType: "website_article", Title: "Title", Author: "Author", Website: "example.com", URL: "https://example.com/c"}
	for i := 0; i < n; i++ {
		go func() {
			id, err := CreateOrGetSource(db, src)
			if err != nil {
				t.Errorf("create or get source: %v", err)
				ids <- 0
				return
			}
			ids <- id
		}()
	}
	var first int64
	for i := 0; i < n; i++ {
		id := <-ids
		if id == 0 {
			t.Fatalf("error in goroutine")
		}
		if i == 0 {
			first = id
		}
		if id != first {
			t.Fatalf("expected same id, got %d and %d", first, id)
		}
	}
	var cnt int
	err := db.QueryRow(`SELECT COUNT(*) FROM sources WHERE url = ?`, "https://example.com/c").Scan(&cnt)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 source row, got %d", cnt)
	}
}
