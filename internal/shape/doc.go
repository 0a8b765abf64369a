// Package shape defines the query shape model: the structured, mutable
// description of a not-yet-executed SELECT statement.
//
// A QueryShape is what the interactive builder edits on behalf of a user:
// an ordered list of output items (column plus optional aggregate), an
// ordered list of filter conditions chained with AND/OR, and up to two join
// specifications with their ON conditions.
//
// ORDER IS BUSINESS LOGIC:
//
// The sequences are ordered on purpose and must not be reordered freely:
//
//   - Filter order determines the left-to-right AND/OR chain emitted into
//     WHERE. No parentheses are ever inserted, so swapping two conditions
//     changes the meaning of the query.
//   - Join order determines which tables an ON condition's left column may
//     reference: only the primary table and the right tables of joins that
//     appear earlier in the sequence. Reordering joins without recomputing
//     eligibility can introduce forward references.
//
// Every entry carries an opaque UUID id assigned at creation. Removal is
// strictly by id, is a silent no-op when the id is unknown, and never
// renumbers or reuses ids.
//
// The shape package holds no SQL knowledge. Translating a QueryShape into
// SQL text is the job of the sqlgen package; column eligibility and
// session ownership live in the session package.
package shape
