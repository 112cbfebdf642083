package service

import (
	"fmt"
	"strings"
)

// Fixed user-facing messages. These are contractual strings: clients and tests
// match on them.
const (
	// NotReadyMessage is returned when generation is requested before every
	// pipeline stage has been completed.
	NotReadyMessage = "데이터가 준비되지 않았습니다"

	// CheckpointPrompt asks the child for permission to extend the ending.
	CheckpointPrompt = "좋아! 이제 결말을 확장해도 될까?"

	// CheckpointRePrompt is sent when the checkpoint answer is not a plain
	// true/false.
	CheckpointRePrompt = "앗, '네' 아니면 '아니오'로만 대답해 줄래? (true/false)"

	// EncouragementMessage resumes the dialogue after the child declines the
	// checkpoint.
	EncouragementMessage = "좋아! 그럼 이야기를 조금 더 이어가 보자!"

	// ExtensionDoneMessage announces the finished extended story to the room.
	ExtensionDoneMessage = "동화의 결말이 완성됐어! 서재에서 확인해 볼 수 있어."
)

// generationSystemPrompt frames the model as a children's story author.
const generationSystemPrompt = `당신은 어린이를 위한 동화 작가입니다. 아이의 이야기 초안과 선택한 교훈을 바탕으로 따뜻하고 상상력 넘치는 동화를 씁니다. 폭력적이거나 무서운 내용은 쓰지 않습니다. 첫 줄에 반드시 "제목: <동화 제목>" 형식으로 제목을 쓰고, 그 다음 줄부터 본문을 씁니다.`

// chatSystemPrompt frames the model as a gentle interviewer for the guided
// ending dialogue.
const chatSystemPrompt = `당신은 아이와 함께 동화의 결말을 만들어 가는 다정한 친구입니다. 반말로, 아이가 이해하기 쉬운 말로 이야기합니다.`

// endingSystemPrompt frames the model for the final closing-scene generation.
const endingSystemPrompt = `당신은 어린이 동화 작가입니다. 아이와 나눈 대화를 바탕으로 동화의 결말 장면을 씁니다.`

// guidingQuestions is the fixed list the chat model must work through, one
// un-asked question per turn.
var guidingQuestions = []string{
	"주인공은 그 다음에 무엇을 했을까?",
	"주인공은 그때 기분이 어땠을까?",
	"주인공을 도와준 친구는 누구였을까?",
	"그곳은 어떤 모습이었을까?",
	"주인공이 가장 가지고 싶었던 것은 무엇일까?",
	"어떤 문제가 생겼을까?",
	"주인공은 그 문제를 어떻게 해결했을까?",
	"주인공이 가장 고마워한 사람은 누구일까?",
	"이야기 속에서 가장 신나는 순간은 언제였을까?",
	"이야기가 끝날 때 주인공은 어떻게 되었을까?",
}

// buildGenerationPrompt composes the single user instruction for story
// generation from the pipeline's three ephemeral scopes.
func buildGenerationPrompt(runtime, ageGroup, morals, draft string) string {
	var b strings.Builder
	b.WriteString("다음 조건에 맞는 동화를 써 주세요.\n")
	fmt.Fprintf(&b, "- 분량: %s 분량으로 읽을 수 있는 길이\n", runtime)
	fmt.Fprintf(&b, "- 대상 연령: %s\n", ageGroup)
	fmt.Fprintf(&b, "- 담을 교훈: %s\n", morals)
	fmt.Fprintf(&b, "\n아이가 만든 이야기 초안:\n%s\n", draft)
	return b.String()
}

// buildChatPrompt composes the normal-turn instruction: story context, full
// history, the latest message, the required question list, and how many
// questions have been asked so far.
func buildChatPrompt(storyContent, history, latestMessage string, askedCount int) string {
	var b strings.Builder
	b.WriteString("다음은 아이와 함께 결말을 만들고 있는 동화야.\n\n")
	fmt.Fprintf(&b, "[동화 내용]\n%s\n\n", storyContent)
	fmt.Fprintf(&b, "[지금까지의 대화]\n%s\n\n", history)
	fmt.Fprintf(&b, "[아이의 마지막 말]\n%s\n\n", latestMessage)
	b.WriteString("[해야 할 질문 목록]\n")
	for i, q := range guidingQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	fmt.Fprintf(&b, "\n지금까지 %d개의 질문을 했어. 아직 하지 않은 질문 중 하나만 골라서 물어봐 줘. ", askedCount)
	b.WriteString("반말로, 3문장 이내로, 이모티콘은 거의 쓰지 말고 물어봐 줘.")
	return b.String()
}

// buildEndingPrompt composes the closing-scene instruction from the full room
// transcript.
func buildEndingPrompt(storyContent, transcript string) string {
	var b strings.Builder
	b.WriteString("다음 동화와 아이와 나눈 대화를 바탕으로 동화의 결말 장면을 써 줘.\n\n")
	fmt.Fprintf(&b, "[동화 내용]\n%s\n\n", storyContent)
	fmt.Fprintf(&b, "[아이와 나눈 대화]\n%s\n\n", transcript)
	b.WriteString("규칙: 8문장 이하로, 한 문장씩 줄을 바꿔서 써 줘. 제목은 쓰지 마.")
	return b.String()
}
