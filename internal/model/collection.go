package model

// Collection is a user-defined grouping of repos.
type Collection struct {
	ID          CollectionID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
}

// NewCollection builds a collection with a fresh ID.
func NewCollection(name, description string) *Collection {
	return &Collection{
		ID:          NewCollectionID(),
		Name:        name,
		Description: description,
	}
}

// CollectionMember links a collection to one of its repos.
type CollectionMember struct {
	CollectionID CollectionID `json:"collection_id"`
	RepoID       RepoID       `json:"repo_id"`
}
