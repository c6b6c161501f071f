// cmd/client/cmd/init.go
package cmd

import (
	"coursekeeper/cmd/client/cmd/course"
)

func init() {
	rootCmd.AddCommand(course.CourseCmd)
	course.CourseCmd.AddCommand(course.AddCmd)
	course.CourseCmd.AddCommand(course.UpdateCmd)
	course.CourseCmd.AddCommand(course.DeleteCmd)
	course.CourseCmd.AddCommand(course.GetCmd)
	course.CourseCmd.AddCommand(course.ListCmd)
	course.CourseCmd.AddCommand(course.WatchCmd)
	course.CourseCmd.AddCommand(course.ImportCmd)
}
