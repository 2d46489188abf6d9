package coach

import (
	"fmt"
	"strings"

	"github.com/priyam/econcoach/internal/exam"
)

// Marks values with a dedicated rubric. Anything else gets the generic
// rubric, so new paper formats degrade gracefully.
const (
	shortEssayMarks = 8
	longEssayMarks  = 12
)

// formattingRules applies to every prose-producing task. Plain text output
// keeps the result usable in the CLI and copy-pasteable into revision notes.
const formattingRules = `FORMATTING RULES:
- Write in plain text. No markdown headings, no bullet symbols other than "-", no LaTeX.
- Use clear paragraphs. Diagrams cannot be drawn, so describe any relevant diagram in words ("a demand and supply diagram would show...").
- Use precise economic terminology throughout.
- British English spelling, as used by the examination board.`

// groundTruth pins down conventions the model must not drift on. These are
// stable facts of the syllabus, restated because models frequently confuse
// the assessment objectives or invent mark bands.
const groundTruth = `SYLLABUS GROUND TRUTH:
- AO1 (Knowledge and understanding): accurate definitions and statements of economic theory.
- AO2 (Analysis): step-by-step chains of reasoning that link cause to effect using theory, including diagram-based reasoning.
- AO3 (Evaluation): supported judgements - weighing arguments, challenging assumptions, and identifying what a conclusion depends on.
- Essay command words: "Explain" requires AO1 and AO2 only. "Assess", "Discuss" and "Evaluate" additionally require AO3 with a reasoned final judgement.
- An evaluation point is only creditworthy when it is developed: a bare "however it depends" earns nothing.`

const shortEssayRubric = `MARK ALLOCATION (8-mark explain essay):
- AO1 Knowledge: up to 3 marks for accurate definitions and identification of relevant theory.
- AO2 Analysis: up to 5 marks for developed chains of reasoning and correct use of a relevant diagram described in words.
- No AO3 evaluation is required or credited.
- A response without any applied example or diagram reference is capped at 5 marks.`

const longEssayRubric = `MARK ALLOCATION (12-mark assess/discuss essay):
- AO1 Knowledge: up to 2 marks for definitions and theory selection.
- AO2 Analysis: up to 6 marks for developed two-sided chains of reasoning with diagram support described in words.
- AO3 Evaluation: up to 4 marks for developed evaluative comment and a reasoned final judgement that answers the question set.
- A one-sided answer is capped at 8 marks. An answer without a final judgement is capped at 9 marks.`

const genericEssayRubric = `MARK ALLOCATION (generic):
- Award roughly one third of the marks for accurate knowledge (AO1), half for developed analysis (AO2), and the remainder for evaluation (AO3) where the command word calls for it.
- Chains of reasoning must be complete; assertion without mechanism earns knowledge marks only.
- Where the command word is "Explain", redistribute the evaluation marks to analysis.`

// rubricFor selects the rubric block by mark value. 8 and 12 are the two
// essay formats of the current syllabus; anything else is treated
// generically rather than rejected.
func rubricFor(maxMarks int) string {
	switch maxMarks {
	case shortEssayMarks:
		return shortEssayRubric
	case longEssayMarks:
		return longEssayRubric
	default:
		return genericEssayRubric
	}
}

// questionBlock renders the shared header carrying the question verbatim.
// Every builder that works from a catalog question includes this block; the
// question text, mark scheme text, and mark value must survive into the
// rendered prompt untouched.
func questionBlock(q exam.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QUESTION (%d marks):\n%s\n\n", q.MaxMarks, q.Text)
	if q.Topic != "" {
		fmt.Fprintf(&b, "TOPIC: %s\n", q.Topic)
	}
	if q.Chapter != "" {
		fmt.Fprintf(&b, "CHAPTER: %s\n", q.Chapter)
	}
	fmt.Fprintf(&b, "\nOFFICIAL MARK SCHEME:\n%s\n", q.MarkScheme)
	return b.String()
}

const modelAnswerSystem = `You are an experienced A-level economics examiner and teacher. You write model essay answers that would earn full marks under the official mark scheme provided, at a length a strong student could produce in exam conditions.`

// buildModelAnswerPrompt renders the instruction for full model-answer
// generation.
func buildModelAnswerPrompt(q exam.Question) string {
	var b strings.Builder
	b.WriteString(questionBlock(q))
	b.WriteString("\n")
	b.WriteString(rubricFor(q.MaxMarks))
	b.WriteString("\n\n")
	b.WriteString(groundTruth)
	b.WriteString("\n\n")
	b.WriteString(formattingRules)
	b.WriteString("\n\nTASK: Write a complete model answer to the question above that would earn all ")
	fmt.Fprintf(&b, "%d marks. Cover every creditworthy point the mark scheme identifies. ", q.MaxMarks)
	b.WriteString("Where the mark scheme requires a diagram, describe it precisely in words.")
	return b.String()
}

const deconstructSystem = `You are an A-level economics teacher who trains students to read exam questions before writing. You break a question into its command word, its content focus, its required assessment objectives, and a paragraph-by-paragraph plan.`

// buildDeconstructPrompt works from a bare question string - deconstruction
// is offered for arbitrary typed-in questions, not only catalog entries.
func buildDeconstructPrompt(questionText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QUESTION:\n%s\n\n", questionText)
	b.WriteString(groundTruth)
	b.WriteString("\n\n")
	b.WriteString(formattingRules)
	b.WriteString(`

TASK: Deconstruct this exam question for a student. Produce, in order:
1. The command word and what it demands (which assessment objectives are required).
2. The precise content focus - what is being asked about, and what would be off-topic.
3. Key definitions the answer must open with.
4. A paragraph plan with the economic mechanism each paragraph should develop.
5. If evaluation is required: the judgement criteria a strong answer would weigh.`)
	return b.String()
}

const gradeSystem = `You are a strict A-level economics examiner marking to the official mark scheme. You never award marks for assertion without reasoning, and you state exactly where marks were won and lost. You are encouraging in tone but rigorous in standard.`

// handwrittenPlaceholder substitutes for the essay text when only scanned
// pages were provided, so the instruction never implies an empty answer.
const handwrittenPlaceholder = "[The student's answer is handwritten and attached as images. Read the attached images in order as one continuous answer.]"

// buildGradePrompt renders the grading instruction. pageCount is the number
// of attached essay images; when essay is empty and pages exist, a
// placeholder note stands in for the typed answer.
func buildGradePrompt(q exam.Question, essay string, pageCount int) string {
	answer := strings.TrimSpace(essay)
	if answer == "" && pageCount > 0 {
		answer = handwrittenPlaceholder
	}

	var b strings.Builder
	b.WriteString(questionBlock(q))
	b.WriteString("\n")
	b.WriteString(rubricFor(q.MaxMarks))
	b.WriteString("\n\n")
	b.WriteString(groundTruth)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "STUDENT ANSWER:\n%s\n", answer)
	if pageCount > 1 {
		fmt.Fprintf(&b, "\nThe %d attached images are consecutive pages of a single handwritten answer. Read them in the order given as one continuous response.\n", pageCount)
	}
	b.WriteString("\n")
	b.WriteString(formattingRules)
	b.WriteString("\n\nTASK: Mark the student answer strictly against the official mark scheme. Produce:\n")
	fmt.Fprintf(&b, "1. A mark out of %d, with the AO breakdown.\n", q.MaxMarks)
	b.WriteString(`2. What earned credit, quoting the student's own phrases.
3. What earned nothing and why (incomplete chains, missing diagram, unsupported evaluation).
4. The three highest-value improvements, most important first.`)
	return b.String()
}

const coachSystem = `You are a live writing coach for A-level economics essays. The student is mid-draft; you score what exists so far and give one piece of advice for the very next paragraph. You respond only with the requested JSON.`

// buildCoachPrompt renders the real-time partial-draft coaching instruction.
func buildCoachPrompt(q exam.Question, draft string) string {
	d := strings.TrimSpace(draft)
	if d == "" {
		d = "[The student has not started writing yet.]"
	}

	var b strings.Builder
	b.WriteString(questionBlock(q))
	b.WriteString("\n")
	b.WriteString(groundTruth)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "DRAFT SO FAR (incomplete, do not penalise for being unfinished):\n%s\n", d)
	b.WriteString(`
TASK: Score the draft so far on each assessment objective from 0 to 10 (ao1, ao2, ao3), judging only what is on the page. Then give one concrete, immediately actionable piece of advice for what to write next.`)
	return b.String()
}

const clozeSystem = `You create fill-in-the-blank revision exercises from economics model essays. You remove only load-bearing economic terms and figures, never filler words. You respond only with the requested JSON.`

// buildClozePrompt renders the cloze-generation instruction from a finished
// model answer.
func buildClozePrompt(q exam.Question, modelAnswer string) string {
	var b strings.Builder
	b.WriteString(questionBlock(q))
	b.WriteString("\n")
	fmt.Fprintf(&b, "MODEL ANSWER:\n%s\n", modelAnswer)
	b.WriteString(`
TASK: Turn the model answer into a cloze exercise.
- Remove 6 to 10 spans that carry real economic content: key terms, directions of change, diagram labels, judgement phrases.
- Replace each removed span in the text with the exact token [BLANK_<id>] where <id> is a positive integer unique to that blank.
- For each blank report its id, the original text removed, and a hint naming the assessment objective it belongs to (AO1, AO2 or AO3) plus a short nudge.
- Every id in the blank list must appear exactly once as a token in the text, and vice versa.`)
	return b.String()
}

const clozeGradeSystem = `You grade a student's fill-in-the-blank answers against the originals from a model economics essay. Exact wording is not required; economic equivalence is. You respond only with the requested JSON.`

// buildClozeGradePrompt renders the batch cloze-grading instruction.
func buildClozeGradePrompt(blanks []exam.ClozeBlank, answers map[int]string) string {
	var b strings.Builder
	b.WriteString("BLANKS AND STUDENT ANSWERS:\n")
	for _, blank := range blanks {
		answer := strings.TrimSpace(answers[blank.ID])
		if answer == "" {
			answer = "[left blank]"
		}
		fmt.Fprintf(&b, "- blank %d (hint: %s)\n  original: %q\n  student answer: %q\n",
			blank.ID, blank.Hint, blank.Original, answer)
	}
	b.WriteString(`
TASK: For every blank, score the student answer from 1 to 5:
5 = economically equivalent to the original, 3 = partially right or imprecise, 1 = wrong or missing.
Give a one-sentence comment per blank explaining the score. Return one feedback item per blank id listed above.`)
	return b.String()
}

const analysisSystem = `You are an examiner who studies mark schemes across many past papers to extract what is repeatedly rewarded. You respond only with the requested JSON.`

// buildAnalysisPrompt renders the chapter-level aggregation instruction
// across every question of one chapter.
func buildAnalysisPrompt(chapter string, questions []exam.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CHAPTER: %s\n", chapter)
	fmt.Fprintf(&b, "PAST-PAPER QUESTIONS AND MARK SCHEMES (%d):\n\n", len(questions))
	for _, q := range questions {
		fmt.Fprintf(&b, "[%s] (%d marks)\nQuestion: %s\nMark scheme: %s\n\n",
			q.Ref(), q.MaxMarks, q.Text, q.MarkScheme)
	}
	b.WriteString(groundTruth)
	b.WriteString(`

TASK: Aggregate across every mark scheme above.
1. knowledge: the AO1 definitions and theory points that recur, each with the source references (use the bracketed labels) that evidence it.
2. analysis: the AO2 chains of reasoning that are repeatedly rewarded, with sources.
3. evaluation: the AO3 judgement criteria that recur, with sources.
4. debates: the recurring debates in this chapter - for each give its topic, the supporting points, the limiting points, and the "depends on" factors, every point tagged with its sources.
Merge near-duplicate points; do not list the same idea twice in different words.`)
	return b.String()
}

const improveSystem = `You are an A-level economics writing coach. Given one sentence or paragraph from a student essay, you rewrite it to examiner standard and explain the single most important change. You respond only with the requested JSON.`

// buildImprovePrompt renders the snippet-improvement instruction.
func buildImprovePrompt(q exam.Question, snippet string) string {
	var b strings.Builder
	b.WriteString(questionBlock(q))
	b.WriteString("\n")
	fmt.Fprintf(&b, "STUDENT SENTENCE OR PARAGRAPH:\n%s\n", snippet)
	b.WriteString(`
TASK: Rewrite the passage so it would earn credit under the mark scheme: complete the chain of reasoning, tighten the terminology, and keep the student's intent and approximate length. Report the improved passage and, in one sentence, the most important reason it is better.`)
	return b.String()
}
