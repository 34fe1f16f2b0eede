// Package vocab holds the fixed word lists the application ships with: the
// advanced-vocabulary pool used to seed new decks, the fallback pairs that pad
// game decks, and the leaderboard display names.
package vocab

import (
	"github.com/vocab-trainer/internal/models"
)

// Entry is one reference word used for seeding decks
type Entry struct {
	EnglishWord      string
	RussianWord      string
	Description      string
	Transcription    string
	PronunciationURL string
}

// Pair returns the entry's term pair
func (e Entry) Pair() models.WordPair {
	return models.WordPair{EnglishWord: e.EnglishWord, RussianWord: e.RussianWord}
}

// Card builds an unsaved card for the given owner
func (e Entry) Card(userID uint) models.Card {
	return models.Card{
		UserID:           userID,
		EnglishWord:      e.EnglishWord,
		RussianWord:      e.RussianWord,
		Description:      e.Description,
		Transcription:    e.Transcription,
		PronunciationURL: e.PronunciationURL,
	}
}

const cambridge = "https://dictionary.cambridge.org/dictionary/english-russian/"

var advancedWords = []Entry{
	{"ubiquitous", "вездесущий", `Присутствующий или находящийся повсюду одновременно. Пример: "Smartphones have become ubiquitous in modern society."`, "/juːˈbɪkwɪtəs/", cambridge + "ubiquitous"},
	{"ephemeral", "мимолётный", `Существующий очень короткое время. Пример: "The ephemeral nature of social media trends."`, "/ɪˈfem.ər.əl/", cambridge + "ephemeral"},
	{"paradigm", "парадигма", `Типичный пример или модель чего-либо. Пример: "This discovery represents a paradigm shift in our understanding."`, "/ˈpær.ə.daɪm/", cambridge + "paradigm"},
	{"eloquent", "красноречивый", `Способный выражать мысли чётко и убедительно. Пример: "Her eloquent speech moved the audience."`, "/ˈel.ə.kwənt/", cambridge + "eloquent"},
	{"meticulous", "скрупулёзный", `Проявляющий чрезвычайное внимание к деталям. Пример: "He is meticulous in his research."`, "/məˈtɪk.jə.ləs/", cambridge + "meticulous"},
	{"ambiguous", "двусмысленный", `Имеющий более одного возможного значения. Пример: "The contract contained several ambiguous clauses."`, "/æmˈbɪɡ.ju.əs/", cambridge + "ambiguous"},
	{"enigmatic", "загадочный", `Трудный для понимания, таинственный. Пример: "She gave an enigmatic smile."`, "/ˌen.ɪɡˈmæt.ɪk/", cambridge + "enigmatic"},
	{"cognizant", "осведомлённый", `Имеющий знание или осознание чего-либо. Пример: "We are cognizant of the risks involved."`, "/ˈkɒɡ.nɪ.zənt/", cambridge + "cognizant"},
	{"ethereal", "неземной", `Крайне деликатный и лёгкий, неземной. Пример: "The ethereal beauty of the northern lights."`, "/ɪˈθɪə.ri.əl/", cambridge + "ethereal"},
	{"fastidious", "привередливый", `Уделяющий большое внимание точности и деталям. Пример: "He is fastidious about his appearance."`, "/fæˈstɪd.i.əs/", cambridge + "fastidious"},
}

var defaultPairs = []models.WordPair{
	{EnglishWord: "resilient", RussianWord: "стойкий"},
	{EnglishWord: "arbitrary", RussianWord: "произвольный"},
	{EnglishWord: "profound", RussianWord: "глубокий"},
	{EnglishWord: "intricate", RussianWord: "сложный"},
	{EnglishWord: "adamant", RussianWord: "непреклонный"},
	{EnglishWord: "peculiar", RussianWord: "своеобразный"},
	{EnglishWord: "eloquent", RussianWord: "красноречивый"},
	{EnglishWord: "tenacious", RussianWord: "упорный"},
}

var randomNames = []string{
	"Александр", "Мария", "Дмитрий", "Анна", "Иван", "Елена",
	"Сергей", "Ольга", "Андрей", "Наталья", "Михаил", "Екатерина",
	"Владимир", "Татьяна", "Алексей", "Светлана", "Николай", "Юлия",
}

// AdvancedWords returns a copy of the seeding pool
func AdvancedWords() []Entry {
	return append([]Entry(nil), advancedWords...)
}

// DefaultPairs returns a copy of the game fallback pairs
func DefaultPairs() []models.WordPair {
	return append([]models.WordPair(nil), defaultPairs...)
}

// RandomNames returns a copy of the leaderboard display names
func RandomNames() []string {
	return append([]string(nil), randomNames...)
}
