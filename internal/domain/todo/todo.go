package todo

import (
	"time"

	"gorm.io/datatypes"
)

// Todo is the aggregate root. Tags, Comments and AssignedTo are owned children;
// Owned is a reference to a registry row the Todo does not own.
type Todo struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Title       string    `gorm:"not null;default:'';column:title" json:"title"`
	Description string    `gorm:"not null;default:'';column:description" json:"description"`
	Completed   bool      `gorm:"not null;default:false;column:completed" json:"completed"`
	Deadline    time.Time `gorm:"column:deadline" json:"deadline"`
	Priority    Priority  `gorm:"type:varchar(16);not null;column:priority" json:"priority"`
	Stage       Stage     `gorm:"type:varchar(16);not null;column:stage" json:"stage"`
	CreatedBy   string    `gorm:"not null;default:'';column:created_by" json:"created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`

	OwnedID int64         `gorm:"not null;index;column:owned_id" json:"owned_id"`
	Owned   *EmailAddress `gorm:"foreignKey:OwnedID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owned,omitempty"`

	Tags       []Tag          `gorm:"foreignKey:TodoID;constraint:OnDelete:CASCADE" json:"tags"`
	Comments   []Comment      `gorm:"foreignKey:TodoID;constraint:OnDelete:CASCADE" json:"comments"`
	AssignedTo []TodoAssignee `gorm:"foreignKey:TodoID;constraint:OnDelete:CASCADE" json:"assigned_to"`
}

func (Todo) TableName() string { return "todo" }

type Tag struct {
	ID     int64   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	TodoID int64   `gorm:"not null;column:todo_id;uniqueIndex:idx_tag_todo_name,priority:1" json:"todo_id"`
	Name   TagKind `gorm:"type:varchar(16);not null;column:name;uniqueIndex:idx_tag_todo_name,priority:2" json:"name"`
}

func (Tag) TableName() string { return "tag" }

type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	TodoID    int64     `gorm:"not null;index;column:todo_id" json:"todo_id"`
	Text      string    `gorm:"not null;default:'';column:text" json:"text"`
	CreatedBy string    `gorm:"not null;default:'';column:created_by" json:"created_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
}

func (Comment) TableName() string { return "comment" }

// TodoAssignee is an assignee record copied by value into the Todo.
type TodoAssignee struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	TodoID      int64  `gorm:"not null;index;column:todo_id" json:"todo_id"`
	Email       string `gorm:"not null;default:'';column:email" json:"email"`
	DisplayName string `gorm:"not null;default:'';column:display_name" json:"display_name"`
}

func (TodoAssignee) TableName() string { return "todo_assigned_to_email_address" }

type EmailAddress struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Email       string `gorm:"not null;uniqueIndex;column:email" json:"email"`
	DisplayName string `gorm:"not null;default:'';column:display_name" json:"display_name"`
}

func (EmailAddress) TableName() string { return "email_address" }

type ActivityAction string

const (
	ActivityCreate        ActivityAction = "create"
	ActivityUpdate        ActivityAction = "update"
	ActivityDelete        ActivityAction = "delete"
	ActivityDeleteComment ActivityAction = "delete_comment"
)

// Activity is an append-only audit row written in the same transaction as the
// change it describes. It intentionally has no foreign key so it outlives the Todo.
type Activity struct {
	ID        int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	TodoID    int64          `gorm:"not null;index;column:todo_id" json:"todo_id"`
	Action    ActivityAction `gorm:"type:varchar(32);not null;column:action" json:"action"`
	Subject   string         `gorm:"not null;default:'';column:subject" json:"subject"`
	Details   datatypes.JSON `gorm:"column:details" json:"details"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Activity) TableName() string { return "todo_activity" }
