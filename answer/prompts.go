package answer

// systemPrompt constrains generation to the supplied passages.
// Citations are delivered as structured data, so inline reference
// markers are explicitly forbidden.
const systemPrompt = "You are the librarian of an archive of transcribed public talks. " +
	"Answer ONLY from the provided transcript passages. Do NOT invent any facts. " +
	"Write 2-5 concise sentences in a neutral, precise tone. " +
	"Do not include bracketed references like [1]; citations are returned separately."

// noPassagesAnswer is the fixed terminal response when nothing was
// retrieved. Not an error.
const noPassagesAnswer = "No relevant passages were found in the talks archive for this query."
