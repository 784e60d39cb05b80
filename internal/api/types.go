package api

import "time"

// Book is a catalogue entry.
type Book struct {
	BookID        int64    `json:"bookID"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Category      string   `json:"category"`
	Language      string   `json:"language"`
	Difficulty    string   `json:"difficulty"`
	Description   string   `json:"description"`
	Rating        float64  `json:"rating"`
	Views         int64    `json:"views"`
	PublishedYear int      `json:"publishedYear"`
	CoverImageURL string   `json:"coverImageUrl"`
	PDFFileURL    string   `json:"pdfFileUrl"`
	Chapters      []Chapter `json:"chapters,omitempty"`
}

// Chapter is one chapter of a book, addressable for summaries and quizzes.
type Chapter struct {
	ChapterID int64  `json:"chapterID"`
	Title     string `json:"title"`
	Number    int    `json:"number"`
}

// BookPage is a paged slice of the catalogue.
type BookPage struct {
	Books      []Book `json:"books"`
	TotalCount int    `json:"totalCount"`
	TotalPages int    `json:"totalPages"`
}

// BookFilter narrows the recommendation listing. Zero values are omitted.
type BookFilter struct {
	PageNumber  int
	PageSize    int
	Category    string
	Author      string
	Language    string
	Difficulty  string
	MinViews    int64
	MinRating   float64
	RecentYears int
}

// LibraryStatus reports whether a book is in the caller's library.
type LibraryStatus struct {
	InLibrary bool `json:"inLibrary"`
}

// ProgressEntry is the reading position for one book.
type ProgressEntry struct {
	BookID               int64 `json:"bookID"`
	LastReadPageNumber   int   `json:"lastReadPageNumber"`
	CompletionPercentage int   `json:"completionPercentage"`
}

// Note is a user note bound to a book chapter.
type Note struct {
	NoteID    int64     `json:"noteID"`
	BookID    int64     `json:"bookID"`
	ChapterID int64     `json:"chapterID"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is an AI-generated chapter summary.
type Summary struct {
	ChapterID int64  `json:"chapterID"`
	Content   string `json:"content"`
}

// Quiz is an AI-generated chapter quiz.
type Quiz struct {
	ChapterID int64          `json:"chapterID"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Profile is the editable part of the user profile.
type Profile struct {
	Username              string `json:"username"`
	ProfilePictureFullURL string `json:"profilePictureFullUrl"`
	Age                   int    `json:"age"`
	Specialization        string `json:"specialization"`
	Level                 string `json:"level"`
	Interest              string `json:"interest"`
}

// ProfilePage is the profile screen payload: the profile plus what the
// user is currently reading.
type ProfilePage struct {
	UserProfile           Profile `json:"userProfile"`
	CurrentlyReadingBooks []Book  `json:"currentlyReadingBooks"`
}

// Streak is the reading streak summary.
type Streak struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

// Registration is the sign-up form.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Age             int    `json:"age"`
	Specialization  string `json:"specialization"`
	Level           string `json:"level"`
	Interest        string `json:"interest"`
}

// Space is a directory entry for a live audio room.
type Space struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	HostUserName     string `json:"hostUserName"`
	ParticipantCount int    `json:"participantCount"`
}

// SpaceUser identifies a participant in a space roster. RTCUID is the
// transport-assigned identifier; UserID is the platform identity.
type SpaceUser struct {
	UserID                int64  `json:"userId"`
	UserName              string `json:"userName"`
	ProfilePictureFullURL string `json:"profilePictureFullUrl"`
	RTCUID                string `json:"rtcUid"`
}

// SpaceDetails is the server-reported roster snapshot for one space.
// Each poll response fully replaces the previous snapshot.
type SpaceDetails struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Host              *SpaceUser  `json:"host"`
	Speakers          []SpaceUser `json:"speakers"`
	Listeners         []SpaceUser `json:"listeners"`
	TotalParticipants int         `json:"totalParticipants"`
}

// JoinGrant is the short-lived transport credential returned by the
// space signaling endpoint.
type JoinGrant struct {
	Token   string `json:"rtcToken"`
	Channel string `json:"channelName"`
	RTCUID  string `json:"rtcUid"`
}
