package interview

// Score thresholds shared by the controller's streak buckets and its
// last-score branch.
const (
	scorePoorBelow  = 40.0
	scoreGoodFrom   = 80.0
	scoreDeepenFrom = 70.0
)

// defaultAlignment is the policy block injected into every prompt.
const defaultAlignment = `Правила выравнивания (соблюдай строго):
- Пиши ТОЛЬКО на русском языке.
- Строгая релевантность роли и текущей теме. Не добавляй ML, если роль не про ML.
- Гиперперсонализация под роль/домен кандидата.
- Избегай токсичности, дискриминации и раскрытия персональных данных.
- Будь кратким и профессиональным.
- Не галлюцинируй факты.
- В генерации вопросов: только ОДИН конкретный вопрос, без преамбул и пояснений.`

// defaultUnknownMarkers are the phrases the controller looks for in red
// flags and weaknesses to classify an answer as "does not know". The list is
// a replaceable policy table, not fixed logic.
var defaultUnknownMarkers = []string{
	"не знает",
	"не знаю",
	"не уверен",
	"затрудняется ответить",
	"отсутствие знаний",
	"нет ответа",
	"не может ответить",
	"без ответа",
}

// Config carries the interview limits and policy knobs.
type Config struct {
	// MaxTotalQuestions is the global question budget of one interview.
	MaxTotalQuestions int

	// MaxQuestionsPerTopic is the per-topic quota stamped into the plan.
	MaxQuestionsPerTopic int

	// Streak thresholds. A streak of this many consecutive poor, good or
	// medium answers within one topic skips the topic.
	MaxPoorAnswers   int
	MaxGoodAnswers   int
	MaxMediumAnswers int

	// MaxDeepeningQuestions and MaxHints bound consecutive follow-ups of
	// the respective kind within one topic.
	MaxDeepeningQuestions int
	MaxHints              int

	// HardQuestionCeiling is the router's circuit breaker against runaway
	// loops, counted over the whole interview.
	HardQuestionCeiling int

	// MaxSteps bounds graph executions per autonomous run.
	MaxSteps int

	// Alignment is prepended to every prompt.
	Alignment string

	// UnknownMarkers classify "does not know" answers.
	UnknownMarkers []string
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		MaxTotalQuestions:     10,
		MaxQuestionsPerTopic:  2,
		MaxPoorAnswers:        1,
		MaxGoodAnswers:        2,
		MaxMediumAnswers:      2,
		MaxDeepeningQuestions: 1,
		MaxHints:              1,
		HardQuestionCeiling:   25,
		MaxSteps:              50,
		Alignment:             defaultAlignment,
		UnknownMarkers:        defaultUnknownMarkers,
	}
}
