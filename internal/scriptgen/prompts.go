package scriptgen

import (
	"fmt"
	"strings"

	"storyreel/internal/storyboard"
)

// storyboardSystemPrompt carries the wire grammar contract. The encoding is
// positional, so the prompt spells out every delimiter and the NO_NODE
// sentinel rather than relying on the model to infer structure.
const storyboardSystemPrompt = `You write storyboard encodings for explainer video animations.
A video is a sequence of frames. Each frame has a spoken dialogue and an
optional graph of labeled shapes with directed connections.

STRICTLY FOLLOW THE OUTPUT FORMAT:
frame_label?frame_text?node_details?connection_details

- node_details: shape1:color1:label1,shape2:color2:label2,...
  Shapes are box, circle, triangle, diamond, pentagon, hexagon, or star.
  Colors are plain names like blue.
- connection_details: source_index1,source_index2:target_index joined with ';'
  Indexes refer to nodes in this frame, starting at 0.
  Example: 0,1:2;2:3 means nodes 0 and 1 point to node 2, and 2 points to 3.
- Separate frames with '$'. Never use a newline as a frame separator.
- For frames without a graph write NO_NODE for both node_details and
  connection_details: frame1?frame text?NO_NODE?NO_NODE
- Do not use special characters inside frame_text.
- Produce at least 8 frames. Tell the topic as a story; each frame_text is
  the narration for that frame and should teach, not enumerate.

Example output:
intro?Every supply chain links parts into products?NO_NODE?NO_NODE$assembly?A car needs a frame and wheels before it rolls off the line?box:black:frame,box:black:wheels,box:black:car?0,1:2

Output ONLY the encoding. No commentary, no code fences.`

func storyboardUserPrompt(prompt, document string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create the storyboard encoding for a video that explains and teaches: %s", prompt)
	if document = strings.TrimSpace(document); document != "" {
		b.WriteString("\n\nGround the explanation in this supporting document:\n")
		b.WriteString(document)
	}
	return b.String()
}

const descriptionSystemPrompt = `You write concise YouTube descriptions for educational explainer videos.
Summarize what the video teaches in two or three sentences, plain text,
no hashtags, no links, no headings.`

func descriptionUserPrompt(prompt string, board *storyboard.Storyboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The video topic is: %s\n\nThe narration script is:\n", prompt)
	for _, text := range board.FrameTexts() {
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

const subheadingSystemPrompt = `You name sections for an educational video.
Respond with JSON only: {"heading": "...", "text": "..."}
heading is a specific subtopic of at most 10 words; text is one plain
sentence describing what that section covers.`

func subheadingUserPrompt(prompt string) string {
	return fmt.Sprintf("Choose a particular topic from the broader topic %s. Output only the JSON object and nothing else.", prompt)
}
