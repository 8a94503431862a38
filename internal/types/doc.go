/*
Package types defines the records shared by every studentcrud package.

# Records

Draft:
  - The five editable fields of a student
  - Produced by the record form, sent on create
  - Required fields carry validate tags (fname, lname, birthdate, phone_number)

Student:
  - A Draft plus the server-assigned id
  - Returned by list, create and update
  - The id never changes after creation

Patch:
  - Partial record sent on update
  - Nil fields are omitted from the JSON body
  - Apply merges a patch over an existing record

# Wire format

	{
	  "id": "12",
	  "fname": "Ada",
	  "lname": "Lovelace",
	  "birthdate": "1815-12-10",
	  "address": "London",
	  "phone_number": "555-0100"
	}

Birthdates are ISO strings. Some backends return a full timestamp, so
display code goes through DateOnly.

# History

HistoryEntry is one mutation recorded in the local activity database.
*/
package types
